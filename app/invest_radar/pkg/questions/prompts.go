package questions

const (
	gapsSystem      = "You are an expert at identifying information gaps and areas requiring clarification in investment analyses."
	domainSystem    = "You are a seasoned venture capitalist and domain expert who asks penetrating questions that reveal the true potential and risks of a startup."
	alignmentSystem = "You are an expert at assessing founder psychology, team dynamics and strategic alignment through interview questions."
	riskSystem      = "You are an expert at identifying and probing investment risks through targeted questioning."
	compileSystem   = "You are an expert at structuring due diligence interviews for maximum insight."
)

const gapsPrompt = `Review this comprehensive analysis and identify:
1. Missing critical information
2. Unverified claims that need validation
3. Inconsistencies or contradictions
4. Areas with insufficient depth
5. Red flags requiring investigation

Analysis:
%s

List the key gaps and areas needing founder clarification.`

const domainPrompt = `Based on this analysis and identified gaps, generate 15-20 domain-specific questions for founders.

Analysis Summary:
%s

Identified Gaps:
%s

Generate questions in these categories:

**TECHNICAL & PRODUCT QUESTIONS:**
- Core technology and IP
- Product architecture and scalability
- Technical differentiation and moat
- Development roadmap and milestones

**BUSINESS MODEL QUESTIONS:**
- Revenue model validation
- Unit economics deep dive
- Pricing strategy
- Customer acquisition strategy

**MARKET & COMPETITION QUESTIONS:**
- Market sizing methodology
- Competitive positioning
- Customer pain points and urgency
- Go-to-market strategy

Format each question with context and what we are trying to validate.`

const alignmentPrompt = `Generate 10-15 questions to assess founder alignment with vision, mission and strategy.

Context from analysis:
%s

Questions already drafted for the domain deep dive:
%s

Cover these areas:

**VISION & MISSION ALIGNMENT:** long-term vision clarity, founder-market fit, personal motivation
**STRATEGIC ALIGNMENT:** priorities and trade-offs, resource allocation, exit strategy and investor alignment
**TEAM ALIGNMENT:** co-founder dynamics, role clarity, decision-making process
**EXECUTION ALIGNMENT:** milestone prioritization, risk tolerance, pivot philosophy

Format questions to reveal depth of thinking and consistency of vision.`

const riskPrompt = `Generate 10-12 risk-focused questions based on the analysis and gaps.

Analysis context:
%s

Identified concerns:
%s

Cover these areas:

**FINANCIAL RISKS:** burn rate and runway scenarios, revenue concentration, financial controls
**MARKET RISKS:** timing and adoption, regulation and compliance, competitive response, churn
**OPERATIONAL RISKS:** key person dependencies, technical debt, vendor risks, IP and legal exposure
**EXECUTION RISKS:** past pivots, milestone track record, resource planning accuracy

Frame questions to uncover hidden risks and test preparedness.`

const compilePrompt = `Compile and organize these questions into a structured interview guide.

Identified Gaps:
%s

Domain Questions:
%s

Alignment Questions:
%s

Risk Questions:
%s

Create a final structured output:

**FOUNDER INTERVIEW GUIDE**

**Priority 1 - Must Ask (Top 10 Questions)**
[Most critical questions that could be deal-breakers]

**Priority 2 - Domain Deep Dive**
[Technical and business model questions specific to their industry]

**Priority 3 - Vision & Alignment Assessment**
[Questions to assess founder quality and alignment]

**Priority 4 - Risk & Mitigation**
[Questions to understand and quantify risks]

**Follow-up Questions Bank**
[Additional questions based on responses]

For each question include the question itself, what we are trying to learn and red flag responses to watch for.`
