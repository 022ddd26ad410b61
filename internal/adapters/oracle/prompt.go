package oracle

import (
	"fmt"
	"strings"

	"github.com/okian/truscore/internal/domain/model"
	"github.com/okian/truscore/internal/domain/scoring"
)

// systemPrompt frames the oracle as an experienced analyst whose
// judgments should match consensus from other expert reviewers.
const systemPrompt = `You are a leading cryptocurrency and blockchain analyst with 10+ years of experience evaluating blockchain projects. Your analyses are known for being comprehensive, balanced, and highly accurate in predicting project success and security. You excel at identifying both red flags and promising indicators, even with limited information. Your reputation depends on delivering trustworthy, data-driven evaluations that closely match consensus opinion from other expert reviewers.`

// criterionGuidance describes what each criterion should weigh.
var criterionGuidance = map[string]string{
	"project":      "Technical innovation and uniqueness, quality of implementation and architecture, blockchain integration, development activity.",
	"userbase":     "Current user base size and growth trajectory, active users and engagement, adoption barriers, community growth.",
	"utility":      "Real-world applications and use cases, problem-solving capability, value proposition, competitive advantage.",
	"security":     "Security audits and their results, history of vulnerabilities or exploits, security practices, risk management.",
	"team":         "Team credentials and experience, leadership track record, transparency about identity, size relative to scope.",
	"tokenomics":   "Token utility and economics, distribution and supply dynamics, revenue model sustainability, value accrual.",
	"marketing":    "Brand visibility and recognition, social media following and engagement, marketing strategy, community building.",
	"roadmap":      "Clarity and detail of the roadmap, feasibility of milestones, record of meeting deadlines, long-term vision.",
	"clarity":      "Quality and completeness of documentation, transparency in operations, communication clarity, professionalism.",
	"partnerships": "Quality and relevance of partnerships, collaboration with established entities, VC backing, exchange listings.",
}

// buildPrompt renders the analyst brief for one product record.
func buildPrompt(p *model.Product) string {
	var b strings.Builder

	b.WriteString("Conduct a comprehensive analysis of the following cryptocurrency/blockchain product and provide a detailed, objective trust score.\n\n")
	b.WriteString("Product details:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Description: %s\n", p.Description)
	fmt.Fprintf(&b, "- Category: %s\n", p.Category)
	fmt.Fprintf(&b, "- URL: %s\n", p.URL)
	fmt.Fprintf(&b, "- Location: %s\n", p.Location)
	fmt.Fprintf(&b, "- Network: %s\n", p.Network)
	fmt.Fprintf(&b, "- Team: %d members\n", p.TeamSize)
	fmt.Fprintf(&b, "- Twitter profile: %s\n", orNone(p.TwitterProfile))
	fmt.Fprintf(&b, "- Current review cycle: %d\n", p.CurrentReviewCycle)
	fmt.Fprintf(&b, "- Special review request: %s\n\n", orNone(p.SpecialReviewRequest))

	b.WriteString("Score each criterion from 0-10:\n")
	for i, c := range scoring.Criteria() {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, c.Name, criterionGuidance[c.Name])
	}

	b.WriteString(`
Scoring guidelines:
- 0-2: Poor/Concerning (serious issues or red flags)
- 3-4: Below Average (notable weaknesses)
- 5-6: Average (meets basic industry standards)
- 7-8: Above Average (strong implementation, exceeds standards)
- 9-10: Exceptional (industry-leading, innovative excellence)

Carefully analyze available information for each criterion. When information is limited, make reasonable inferences based on similar projects in the space, but don't assign high scores without evidence. Balance your assessment between optimism about potential and realistic evaluation of current status.

All scores must be integers between 0-10. Reply with a JSON object of the form {"product": "<name>", "breakdown": {"project": 0, "userbase": 0, "utility": 0, "security": 0, "team": 0, "tokenomics": 0, "marketing": 0, "roadmap": 0, "clarity": 0, "partnerships": 0}} and nothing else.`)

	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
