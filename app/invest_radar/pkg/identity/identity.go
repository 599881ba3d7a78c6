package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/llm"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

const (
	SourceLLM     = "llm"
	SourcePattern = "pattern"
)

const systemPrompt = "You extract structured company facts from startup documents. Output JSON only."

const extractPrompt = `Read the following startup material and identify the company it describes.
Respond with a single JSON object and nothing else:
{
  "name": "legal or brand name of the company, empty string if unknown",
  "industry": "primary industry or sector",
  "stage": "funding stage such as Pre-seed, Seed, Series A",
  "products": ["main products or services"],
  "founders": ["founder names"],
  "location": "headquarters city and country",
  "description": "one sentence describing what the company does"
}
Use empty values when a fact is not stated. Do not invent facts.

Material:
%s`

const namePrompt = `The company name extracted from the material below looks like a template placeholder (%q).
Reply with only the real company or brand name as written in the material, or NONE if it is not stated.

Material:
%s`

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:Company|Startup)[ \t]*:[ \t]*([A-Z][A-Za-z0-9 &.]+)`),
		regexp.MustCompile(`(?m)^([A-Z][A-Za-z0-9 &.]+?)[ \t]*[-–—][ \t]*`),
		regexp.MustCompile(`(?m)^([A-Z][A-Za-z0-9&.]+(?: [A-Z][A-Za-z0-9&.]+)*),? (?:Inc|Corp|LLC|Ltd)\b`),
	}

	founderPattern = regexp.MustCompile(`(?i:co-?founder|founder|ceo)[ \t]*[:,-]?[ \t]*([A-Z][a-z]+ [A-Z][a-z]+)`)
	productPattern = regexp.MustCompile(`(?i:our product|product)[ \t]*:[ \t]*([^\n.]+)`)

	// 模板残留的名称
	artifactPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\s*$`),
		regexp.MustCompile(`(?i)^(unknown|n/?a|none|tbd|null|example|sample)(\s+(company|startup|inc))?$`),
		regexp.MustCompile(`(?i)^(your|my|our)\s+(company|startup)(\s+name)?$`),
		regexp.MustCompile(`(?i)^(company|startup)(\s+name)?$`),
		regexp.MustCompile(`^[\[<{(].*[\]>})]$`),
		regexp.MustCompile(`(?i)lorem ipsum|placeholder|x{3,}`),
	}
)

type industryRule struct {
	industry string
	keywords []string
}

var industryRules = []industryRule{
	{"fintech", []string{"financial", "payments", "banking"}},
	{"healthtech", []string{"health", "medical", "clinical"}},
	{"saas", []string{"software", "platform", "cloud"}},
	{"ai/ml", []string{"artificial intelligence", "machine learning"}},
	{"biotech", []string{"biotech", "pharmaceutical", "drug"}},
}

type stageRule struct {
	pattern *regexp.Regexp
	stage   string
}

// pre-seed 需先于 seed 匹配
var stageRules = []stageRule{
	{regexp.MustCompile(`(?i)pre-?seed`), "Pre-seed"},
	{regexp.MustCompile(`(?i)series\s+a\b`), "Series A"},
	{regexp.MustCompile(`(?i)series\s+b\b`), "Series B"},
	{regexp.MustCompile(`(?i)series\s+c\b`), "Series C"},
	{regexp.MustCompile(`(?i)\bseed\b`), "Seed"},
}

// Extractor 公司身份提取器
type Extractor struct {
	gen        llm.Generator
	sampleSize int
}

// NewExtractor 创建提取器，sampleSize 为参与提取的字符数
func NewExtractor(gen llm.Generator, sampleSize int) *Extractor {
	return &Extractor{gen: gen, sampleSize: sampleSize}
}

type llmIdentity struct {
	Name        string   `json:"name"`
	Industry    string   `json:"industry"`
	Stage       string   `json:"stage"`
	Products    []string `json:"products"`
	Founders    []string `json:"founders"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
}

// Extract 先请求结构化 JSON，解析失败时退回规则匹配；非空名称像模板残留时再单独请求一次名称
func (e *Extractor) Extract(ctx context.Context, text string) model.Identity {
	sample := truncate(text, e.sampleSize)
	if strings.TrimSpace(sample) == "" {
		return model.Identity{}
	}

	id, err := e.fromLLM(ctx, sample)
	if err != nil {
		logger.Log.Warnf("结构化身份提取失败，改用规则匹配: %v", err)
		id = FromPatterns(sample)
	}

	if id.Name != "" && IsArtifact(id.Name) {
		logger.Log.Infof("公司名称疑似模板占位 [%s]，重新提取", id.Name)
		id.Name = e.refineName(ctx, sample, id.Name)
	}

	if id.Usable() {
		logger.Log.Infof("识别到公司: %s (industry=%s, stage=%s)", id.Name, id.Industry, id.Stage)
	}
	return id
}

func (e *Extractor) fromLLM(ctx context.Context, sample string) (model.Identity, error) {
	resp, err := e.gen.Generate(ctx, systemPrompt, fmt.Sprintf(extractPrompt, sample))
	if err != nil {
		return model.Identity{}, err
	}

	var parsed llmIdentity
	if err := json.Unmarshal([]byte(llm.StripFences(resp)), &parsed); err != nil {
		return model.Identity{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return model.Identity{
		Name:        strings.TrimSpace(parsed.Name),
		Industry:    strings.TrimSpace(parsed.Industry),
		Stage:       strings.TrimSpace(parsed.Stage),
		Products:    parsed.Products,
		Founders:    parsed.Founders,
		Location:    strings.TrimSpace(parsed.Location),
		Description: strings.TrimSpace(parsed.Description),
		Source:      SourceLLM,
	}, nil
}

func (e *Extractor) refineName(ctx context.Context, sample, current string) string {
	resp, err := e.gen.Generate(ctx, systemPrompt, fmt.Sprintf(namePrompt, current, sample))
	if err != nil {
		logger.Log.Warnf("公司名称二次提取失败: %v", err)
		return ""
	}
	name := strings.Trim(strings.TrimSpace(llm.StripFences(resp)), `"'`)
	if strings.EqualFold(name, "none") || IsArtifact(name) {
		return ""
	}
	return name
}

// FromPatterns 基于正则与关键字表的确定性提取
func FromPatterns(text string) model.Identity {
	id := model.Identity{Source: SourcePattern}

names:
	for _, p := range namePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			name := strings.TrimRight(strings.TrimSpace(m[1]), ".")
			if !IsArtifact(name) {
				id.Name = name
				break names
			}
		}
	}

	lower := strings.ToLower(text)
	for _, rule := range industryRules {
		if containsAny(lower, rule.keywords) {
			id.Industry = rule.industry
			break
		}
	}

	for _, rule := range stageRules {
		if rule.pattern.MatchString(text) {
			id.Stage = rule.stage
			break
		}
	}

	for _, m := range founderPattern.FindAllStringSubmatch(text, 5) {
		id.Founders = appendUnique(id.Founders, m[1])
	}
	for _, m := range productPattern.FindAllStringSubmatch(text, 3) {
		id.Products = appendUnique(id.Products, strings.TrimSpace(m[1]))
	}
	return id
}

// IsArtifact 名称是否为空或模板占位
func IsArtifact(name string) bool {
	name = strings.TrimSpace(name)
	for _, p := range artifactPatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func containsAny(s string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, x := range list {
		if strings.EqualFold(x, v) {
			return list
		}
	}
	return append(list, v)
}
