package validate

// fastValidationPrompt is the tier-1 coherence-check prompt, asking a cheap
// model for a quick score/issues/needs-deep-review verdict on one segment.
const fastValidationPrompt = `Check this transcript segment for errors. Return ONLY valid JSON, no other text.

Agenda: %s
Text: %s

Known council members: %s
Known municipal terms: %s

Return this exact JSON format:
{"score": 85, "issues": ["example issue"], "needs_deep_review": false}`

// deepValidationPrompt is the tier-2 prompt sent to the slower model for
// segments tier 1 (or the WER comparison) flagged as suspect.
const deepValidationPrompt = `You are validating a city council meeting transcript. Think through potential errors carefully.

Agenda Item: %s
Transcript Segment: %s

Transcription Model Comparison:
- Primary version: %s
- Secondary version: %s

Known council members: %s
Known municipal terms: %s

Analyze:
1. Which transcription is more accurate for proper nouns?
2. Are there nonsense words or repeated phrases?
3. Does the discussion match the agenda topic?
4. Are there obvious transcription errors?

Return ONLY valid JSON:
{"coherence_score": 85, "preferred_transcription": "primary", "issues": ["list issues"], "corrections": {"wrong": "right"}, "needs_human_review": false}`
