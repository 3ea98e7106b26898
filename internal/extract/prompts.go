package extract

import "fmt"

const systemPrompt = `You extract structured data from web pages.
Answer with a single JSON object and nothing else. Use null for any field you cannot find.`

// buildJobURLsPrompt asks for the job links of one listing page
func buildJobURLsPrompt(document, instructions string) string {
	return fmt.Sprintf(`Extract the List of job_urls in this home_page_html_document.

The home_page_html_document is: %s

Format instructions: %s`, document, instructions)
}

// buildJobInformationPrompt asks for the fields of one job posting
func buildJobInformationPrompt(document, applyURL, instructions string) string {
	return fmt.Sprintf(`Extract the following fields: job_description, job_title, company_name, company_website,
and the apply_url in this html_document.
The job_description should not output html tags.

Think step-by-step. Remove all html tags in the job_description field.

The apply_url is %s
The html_document is: %s

Format instructions: %s`, applyURL, document, instructions)
}
