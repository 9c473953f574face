package ingest

import "fmt"

const imageCaptionPrompt = `You are an expert in computer vision and image interpretation. Generate a precise and informative summary of the visual content in the provided image. The image may represent real-world scenes, model architecture diagrams, data visualizations (e.g., bar charts, line plots, confusion matrices), or other structured or unstructured visual data.

Your summary should:
1. Identify key visual elements and their relationships.
2. Describe the overall context or purpose of the image (e.g., experimental setup, model workflow, or data trend).
3. Highlight any notable patterns, anomalies, or insights relevant for analysis.

Maintain technical clarity and avoid speculation or artistic interpretation.
Do not begin your response with phrases like "Here is a summary" or any equivalent.
Simply output the summary itself.`

const tableSummaryPrompt = `You are an expert in data analysis and tabular interpretation. Generate a concise and informative summary of the data presented in the provided table. The table may contain experimental results, performance metrics, benchmark comparisons, statistical data, or any structured dataset.

Your summary should:
1. Identify the key variables, metrics, and dimensions represented.
2. Describe the overall trends, patterns, or relationships within the data.
3. Highlight any significant observations, outliers, or notable comparisons.
4. Capture the context or purpose implied by the data.

Respond only with the summary, without additional comments or preambles.
Do not begin your response with phrases like "Here is a summary" or any equivalent.

Here is the table to summarize:

%s`

// ImageCaptionPrompt returns the vision prompt used to caption extracted
// images.
func ImageCaptionPrompt() string {
	return imageCaptionPrompt
}

// TableSummaryPrompt returns the prompt for summarizing a table given its
// HTML representation.
func TableSummaryPrompt(tableHTML string) string {
	return fmt.Sprintf(tableSummaryPrompt, tableHTML)
}
