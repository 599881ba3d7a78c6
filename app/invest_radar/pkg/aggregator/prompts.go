package aggregator

const synthesisSystem = `You are a senior investment partner responsible for synthesizing multiple specialized analyses
into a comprehensive investment recommendation with detailed scoring. You combine diverse insights,
weigh their confidence and identify the key questions for due diligence.`

const synthesisPrompt = `Synthesize the following specialized analyses into a comprehensive investment summary:

**EXECUTIVE INVESTMENT SUMMARY**

**Investment Thesis:**
- One-sentence elevator pitch and core value proposition
- Primary investment opportunity and market timing
- Key differentiators and competitive advantages
- Investment recommendation: [Strong Buy/Buy/Hold/Pass]

**SCORING FRAMEWORK (0-100 scale):**
- Team (25%%): founder-market fit, technical execution, hiring velocity, prior outcomes
- Market (25%%): TAM/SAM/SOM, growth indicators, pain acuteness, competitive intensity
- Product (20%%): differentiation and moat, UX and activation, tech defensibility, unit economics
- Traction (20%%): growth metrics, retention, sales efficiency, external proof
- Financials (5%%): runway and burn, revenue quality, capital efficiency
- Moat (5%%): data advantage, network effects, platform lock-in, regulatory moat
- OVERALL WEIGHTED SCORE: [X/100]

**Risk Assessment:**
- Primary risks with mitigation strategies
- Market, competitive, execution, team and regulatory risks

**Investment Recommendation:**
- Recommended action and rationale
- Key milestones for the next round
- Exit considerations

**Due Diligence Priorities:**
- Top 5 areas requiring deeper investigation
- Critical validation points and reference checks

**Web Intelligence Highlights:**
- Key findings from online research and red flags identified

Specialized Analyses to Synthesize:
%s

Base every score and recommendation on concrete evidence from the analyses.`

// aggregateSchema 汇总结果的结构约束
const aggregateSchema = `{
  "type": "object",
  "required": ["narrative", "confidence", "score", "questions", "metadata"],
  "properties": {
    "narrative": {"type": "string", "minLength": 1},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "score": {
      "type": "object",
      "required": ["team", "market", "product", "traction", "financials", "moat", "overall", "recommendation", "weights"],
      "properties": {
        "team": {"$ref": "#/definitions/dimension"},
        "market": {"$ref": "#/definitions/dimension"},
        "product": {"$ref": "#/definitions/dimension"},
        "traction": {"$ref": "#/definitions/dimension"},
        "financials": {"$ref": "#/definitions/dimension"},
        "moat": {"$ref": "#/definitions/dimension"},
        "overall": {"$ref": "#/definitions/dimension"},
        "recommendation": {"enum": ["Strong Buy", "Buy", "Hold", "Pass"]},
        "weights": {"type": "object", "additionalProperties": {"type": "number", "minimum": 0, "maximum": 1}}
      }
    },
    "questions": {
      "type": "object",
      "properties": {
        "interview_guide": {"type": "string"},
        "gaps": {"type": "string"},
        "top_questions": {"type": ["array", "null"], "maxItems": 5, "items": {"type": "string"}}
      }
    },
    "metadata": {
      "type": "object",
      "required": ["total_analyses"],
      "properties": {
        "total_analyses": {"type": "integer", "minimum": 0}
      }
    }
  },
  "definitions": {
    "dimension": {"type": "number", "minimum": 0, "maximum": 100}
  }
}`
