package engine

// LLM prompt templates. Data only, no logic.

// keywordsPrompt asks for YouTube search phrases for a study topic.
// Args: max keyword count, study topic.
const keywordsPrompt = `Extract a list of keywords from the following prompt.
Each keyword is a short YouTube search phrase (1-5 words) for an educational video on the topic.
Return at most %d keywords, most important first.

Respond with valid JSON only (no markdown, no ` + "`" + `json` + "`" + ` block): a JSON array of strings.
Example: ["linear regression", "gradient descent", "overfitting"]

Prompt: %s`

// quizPrompt builds multiple-choice questions from a video transcript.
// Args: question count, transcript.
const quizPrompt = `You are writing a short multiple-choice quiz about a video the student just watched.
Use ONLY the transcript below. Write exactly %d questions.

Respond with valid JSON only (no markdown, no ` + "`" + `json` + "`" + ` block):
[
  {"question": "Question text?", "options": ["A) first", "B) second", "C) third", "D) fourth"], "answer": "B"}
]

Rules:
- exactly 4 options per question, prefixed "A) ", "B) ", "C) ", "D) "
- answer is the single letter of the correct option
- questions test understanding, not trivia about the speaker
- answer in the SAME LANGUAGE as the transcript

Transcript:
%s`
