package main

import (
	"fmt"
)

// promptSpec is the fixed part of one generation call.
type promptSpec struct {
	AgentName   string
	Description string
	Instruction string
	Temperature float32
	MaxTokens   int32
	Fallback    string
}

var promptSpecs = map[DocumentKind]promptSpec{
	DocumentResume: {
		AgentName:   "resume_tailor",
		Description: "Tailor a resume to a job description",
		Instruction: resumePrompt(),
		Temperature: 0.7,
		MaxTokens:   1500,
		Fallback:    "Error: Could not generate tailored resume.",
	},
	DocumentCoverLetter: {
		AgentName:   "cover_letter_writer",
		Description: "Write a cover letter for a job description",
		Instruction: coverLetterPrompt(),
		Temperature: 0.7,
		MaxTokens:   1000,
		Fallback:    "Error: Could not generate cover letter.",
	},
}

func resumePrompt() string {
	return `
You are an expert resume writer and career coach.
Your task is to take the provided 'Original Resume' and the 'Job Description' and generate a complete, ready-to-use 'Tailored Resume'.

The 'Tailored Resume' should:
1. Be a full resume document, not just a summary of changes or suggestions.
2. Incorporate all relevant sections from the 'Original Resume' (Contact Info, Summary, Skills, Experience, Education, Portfolio, Certifications, Additional Information).
3. Rewrite and rephrase content from the 'Original Resume' to strongly align with the keywords, requirements and responsibilities listed in the 'Job Description'.
4. Emphasize skills and experiences from the 'Original Resume' that are most pertinent to the target job.
5. Maintain a professional tone and use action verbs effectively.
6. Be well formatted and easy to read. Use clear placeholders like [Your Name], [Your Email], [Company Name], [University Name] for any personal detail that is missing or inferred.
7. Not invent new experiences or skills that are not present in the original resume; re-angle and emphasize existing information instead.
8. Start with a clear, professional header:
   a. The applicant's full name is the most prominent part of the header.
   b. A contact block follows the name: Phone Number, Email Address, LinkedIn Profile URL, GitHub Profile URL and Portfolio/Website URL when available.
   c. Contact details are easy to scan, one per line or grouped like Phone | Email | LinkedIn.
   d. Missing contact details use placeholders such as [Your Phone Number], [Your LinkedIn Profile URL], [Your Portfolio URL].
   e. The header is separated from the following sections by a line containing only ---.

Formatting rules: plain text only. Mark emphasis by wrapping text in double asterisks, for example **Experience**. Put a line containing only --- between major sections. Do not use any other Markdown.
`
}

func coverLetterPrompt() string {
	return `
You are an expert career advisor specializing in crafting compelling cover letters.
Your task is to write a personalized cover letter based on the provided resume and job description.

The cover letter should express genuine interest in the role and company, highlight key qualifications from the resume that match the job description, and end with a strong call to action.
Address it generically if no specific hiring manager name is available. Ensure the output is a complete cover letter.

Formatting rules: plain text only. You may mark emphasis by wrapping text in double asterisks. Do not use any other Markdown.
`
}

// userMessage wraps the resume and job description verbatim between triple
// quotes.
func userMessage(kind DocumentKind, req TailorRequest) string {
	switch kind {
	case DocumentCoverLetter:
		return fmt.Sprintf(
			"Applicant's Resume:\n\"\"\"\n%s\n\"\"\"\n\nJob Description:\n\"\"\"\n%s\n\"\"\"\n\nCover Letter:",
			req.CurrentResume,
			req.JobDescription,
		)
	default:
		return fmt.Sprintf(
			"Original Resume:\n\"\"\"\n%s\n\"\"\"\n\nJob Description:\n\"\"\"\n%s\n\"\"\"\n\nGenerate the Tailored Resume based on the above, paying close attention to crafting an excellent header section:",
			req.CurrentResume,
			req.JobDescription,
		)
	}
}
