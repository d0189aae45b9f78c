package verify

// verifyPrompt asks for a strict JSON judgment of one video.
// Args: title, description, channel.
const verifyPrompt = `Analyze this YouTube video metadata to determine if it's genuinely educational content.

Title: %s
Description: %s
Channel: %s

Rules for Educational Content:
1. Must have clear educational purpose (teaching, explaining, or instructing)
2. Must be structured like a lesson/tutorial
3. No entertainment-only or vlog content
4. No clickbait or misleading content
5. Must be appropriate for students
6. Should have academic or professional value

Respond in JSON format only:
{
  "isEducational": boolean,
  "confidence": number between 0-1,
  "subject": "subject area",
  "gradeLevel": "grade level or range",
  "reason": "brief explanation"
}`

// maxDescriptionRunes bounds the description embedded in the prompt.
const maxDescriptionRunes = 2000
