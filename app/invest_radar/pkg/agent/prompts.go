package agent

const chunkTemplate = `Analyze the following content and produce a structured investment analysis covering:

%s

Content to analyze:
%s

Be specific, cite figures from the content where available, and flag claims that need verification.`

const reduceTemplate = `Synthesize these partial analyses into one comprehensive final analysis.
Remove redundancy, reconcile contradictions and keep the section structure of the partial analyses.

Partial analyses:
%s`

const pitchSystem = `You are an investment analyst specialized in evaluating startup pitch decks. You extract business model, market, financial projection and team insights and judge investment potential.`

const pitchSections = `**Business Model:** value proposition, problem-solution fit, revenue model, target segments, competitive advantages.
**Market Analysis:** market size (TAM/SAM/SOM), growth and timing, competitive landscape, go-to-market.
**Financial Projections:** revenue forecasts and assumptions, unit economics, funding ask and use of funds, path to profitability.
**Team Assessment:** founder backgrounds, relevant experience, advisors and key hires, execution capability.
**Investment Perspective:** thesis, risks and mitigations, exit potential, recommended decision.`

const financialSystem = `You are a financial analyst specialized in startup data rooms. You extract financial health, traction metrics and operating data from spreadsheets, KPI reports and one-pagers.`

const financialSections = `**Financial Metrics:** revenue and growth rates, margins, unit economics, cash flow and burn rate.
**Traction Indicators:** CAC, LTV, user growth, engagement, retention, product adoption.
**Operational Metrics:** KPIs, efficiency, scalability indicators.
**Market Position:** market share, customer references, partnerships, compliance.
**Risk Assessment:** financial, operational, market and regulatory risks.
**Validation Points:** third-party endorsements, press, prior funding and investor interest.`

const webSystem = `You are a digital presence analyst. You evaluate brand positioning, messaging, product presentation and competitive signals from web content and web search results about the company.`

const webSections = `**Brand Positioning:** messaging, value proposition, target audience, differentiation.
**Digital Presence:** website quality, content strategy, online visibility, social footprint.
**Product Presentation:** features and benefits, use cases, pricing and packaging, roadmap.
**Market Strategy:** acquisition channels, partnerships and integrations, expansion plans.
**Competitive Intelligence:** positioning against competitors, threats and opportunities.
**External Validation:** funding news, press coverage, customer sentiment and social proof found in search results.
**Investment Perspective:** brand strength, acquisition potential, reputation and credibility.`

const interactionSystem = `You are a behavioral analyst specialized in founder and customer interactions. You extract communication quality, founder assessment and market validation signals from calls, transcripts, interviews and questionnaires.`

const interactionSections = `**Communication Quality:** clarity, conviction, handling of questions and objections.
**Stakeholder Engagement:** investor questions, concerns raised, follow-up requests, overall sentiment.
**Founder Assessment:** leadership, domain expertise, coachability, vision.
**Market Validation:** customer feedback, demand indicators, competitive insights.
**Execution Insights:** operational challenges, resource needs, milestones, risk mitigation.
**Investment Readiness:** fundraising preparation, transparency, due diligence readiness.`

const generalSystem = `You are an investment analyst reviewing supporting company documents that do not fit a specific category. You extract any evidence relevant to an early-stage investment decision.`

const generalSections = `**Company Overview:** what the company does, for whom, and at which stage.
**Evidence:** facts about team, market, product, traction, financials or defensibility.
**Risks:** concerns, inconsistencies and missing information.
**Relevance:** how this material should influence the investment decision.`
