// Package analyze runs LLM-based structured extraction over a validated
// meeting's transcript, producing one or more typed analysis records per
// agenda-aligned segment plus a meeting-level summary.
package analyze

import "strings"

// Summary, VoteRecord, PriorityAlerts, AdvocacyIntel, OppositionTracking, and
// PublicComment are the six analysis types the pipeline can extract from a
// segment. Each has a fixed prompt template and expected JSON shape.
const (
	Summary            = "summary"
	VoteRecord         = "vote_record"
	PriorityAlerts     = "priority_alerts"
	AdvocacyIntel      = "advocacy_intel"
	OppositionTracking = "opposition_tracking"
	PublicComment      = "public_comment"
)

// AllAnalysisTypes lists every analysis type the pipeline supports.
func AllAnalysisTypes() []string {
	return []string{Summary, VoteRecord, PriorityAlerts, AdvocacyIntel, OppositionTracking, PublicComment}
}

// DefaultAnalysisTypes is the subset run when the caller doesn't name one
// explicitly.
func DefaultAnalysisTypes() []string {
	return []string{Summary, AdvocacyIntel, VoteRecord, PriorityAlerts}
}

const summaryPrompt = `Summarize this city council meeting segment in 3-5 bullet points.
Focus on:
- Key decisions made
- Major debates or disagreements
- Action items or next steps
- Public comment themes

Segment:
{text}

Return JSON: {"summary": ["bullet1", "bullet2", ...]}`

const advocacyIntelPrompt = `Analyze this city council meeting segment for civic advocacy intelligence.

Extract:
1. Housing and development discussions
2. Zoning changes or proposals
3. Infrastructure and transit topics
4. Environmental and sustainability mentions
5. Council member positions on growth issues

Segment:
{text}

Agenda Item: {agenda_title}

Return JSON:
{
  "housing_mentions": ["list of housing-related discussions"],
  "zoning_topics": ["any zoning changes discussed"],
  "infrastructure": ["infrastructure topics"],
  "sustainability": ["environmental mentions"],
  "council_positions": {"member_name": "their stated position"},
  "key_quotes": ["notable quotes"],
  "action_items": ["decisions or next steps"]
}`

const voteRecordPrompt = `Extract all votes from this meeting segment.

For each vote, identify:
- What was voted on
- Who made the motion
- Who seconded
- Vote result
- Individual votes if mentioned

Segment:
{text}

Return JSON:
{
  "votes": [
    {
      "motion": "description of what was voted on",
      "mover": "who made motion",
      "seconder": "who seconded",
      "result": "passed/failed",
      "vote_count": {"yes": 0, "no": 0, "abstain": 0},
      "individual_votes": {"member": "yes/no/abstain"}
    }
  ]
}`

const priorityAlertsPromptTemplate = `Check this segment for these priority topics: {priority_keywords}

For each mention, note the context and who said it.

Segment:
{text}

Return JSON:
{
  "alerts": [
    {
      "keyword": "the priority topic found",
      "context": "what was said about it",
      "speaker": "who mentioned it",
      "sentiment": "supportive/opposed/neutral"
    }
  ]
}`

const oppositionTrackingPromptTemplate = `Find statements by these council members in this segment: {watched_members}

For each statement, note:
- The topic being discussed
- Their stated position
- How they voted (if applicable)

Segment:
{text}

Return JSON:
{"statements": [{"member": "name", "topic": "topic", "position": "their stance", "quote": "relevant quote"}]}`

const publicCommentPrompt = `Summarize public comments in this segment:
- How many speakers (estimate)
- Main topics raised
- General sentiment
- Any notable organizations represented

Segment:
{text}

Return JSON:
{
  "speaker_count": 0,
  "topics": ["main topics"],
  "sentiment_summary": "overall tone",
  "organizations": ["groups represented"],
  "key_points": ["main points raised"]
}`

const maxSegmentChars = 6000

// buildPrompt fills in the fixed template for analysisType with the
// segment's text, agenda title, and any domain-config-driven keyword lists
// the template needs. An unknown analysisType returns "", false.
func buildPrompt(analysisType, text, agendaTitle string, priorityKeywords, watchedMembers []string) (string, bool) {
	if len(text) > maxSegmentChars {
		text = text[:maxSegmentChars] + "... [truncated]"
	}
	if agendaTitle == "" {
		agendaTitle = "General meeting content"
	}

	var template string
	switch analysisType {
	case Summary:
		template = summaryPrompt
	case AdvocacyIntel:
		template = advocacyIntelPrompt
	case VoteRecord:
		template = voteRecordPrompt
	case PriorityAlerts:
		template = strings.ReplaceAll(priorityAlertsPromptTemplate, "{priority_keywords}", strings.Join(priorityKeywords, ", "))
	case OppositionTracking:
		template = strings.ReplaceAll(oppositionTrackingPromptTemplate, "{watched_members}", strings.Join(watchedMembers, ", "))
	case PublicComment:
		template = publicCommentPrompt
	default:
		return "", false
	}

	prompt := strings.ReplaceAll(template, "{text}", text)
	prompt = strings.ReplaceAll(prompt, "{agenda_title}", agendaTitle)
	return prompt, true
}
