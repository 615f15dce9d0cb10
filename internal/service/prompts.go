package service

import "fmt"

func drugInfoPrompt(name string) string {
	return fmt.Sprintf("Provide a brief clinical summary for pharmacists on the drug **%s** in Markdown format:\n"+
		"## Therapeutic Uses\n- List primary therapeutic uses\n"+
		"## Standard Dosage\n- Provide standard adult dosage (include administration route and frequency)\n"+
		"## Common Side Effects\n- List common side effects\n"+
		"## Serious Side Effects\n- List serious side effects requiring immediate attention\n"+
		"## Contraindications\n- List conditions or scenarios where the drug should not be used\n"+
		"## Important Drug Interactions\n- List significant drug interactions\n"+
		"Use concise bullet points. Ensure clarity and professional tone.", name)
}

func symptomAdvicePrompt(symptoms string) string {
	return fmt.Sprintf("Given the symptoms: **%s**, recommend over-the-counter treatment options in Markdown format:\n"+
		"## Recommended Over-the-Counter Treatments\n- List appropriate OTC medications or treatments\n"+
		"## Common Side Effects\n- List common side effects of recommended treatments\n"+
		"## Important Interactions\n- List significant drug or condition interactions\n"+
		"## Safety Tips\n- Provide key safety tips or precautions\n"+
		"If symptoms suggest a medical emergency or severe condition, clearly state: **'Seek immediate medical attention.'** "+
		"Use concise bullet points in Markdown format. Avoid disclaimers.", symptoms)
}

func predictConditionsPrompt(symptoms string) string {
	return fmt.Sprintf("You are a medical assistant.\n\n"+
		"Given the following symptoms: **%s**, predict the most likely diseases or conditions.\n\n"+
		"### Possible Diseases\n- List the top 3-5 conditions matching the combined symptom profile, prioritizing common and serious ones.\n\n"+
		"### Description\n- For each condition, explain in 1-2 sentences how the symptoms relate to it.\n\n"+
		"### Symptom-wise Breakdown\n- For each symptom give the symptom, the likely associated disease and a brief explanation.\n\n"+
		"### When to Seek Immediate Medical Attention\n- Highlight symptoms or combinations that may indicate an emergency, in plain language.\n\n"+
		"Use Markdown formatting. Avoid general disclaimers. Do not repeat the same disease unless strongly justified.", symptoms)
}

const imageAnalysisPrompt = "Analyze this image of a medicine or drug packaging. Provide the response in Markdown format:\n" +
	"## Drug Information\n" +
	"- **Drug Name**: Identify the drug name (if visible)\n" +
	"- **Manufacturer**: Identify the manufacturer (if visible)\n" +
	"## Clinical Summary\n" +
	"- **Therapeutic Uses**: List primary uses\n" +
	"- **Standard Dosage**: Provide standard dosage\n" +
	"- **Common Side Effects**: List common side effects\n" +
	"- **Serious Side Effects**: List serious side effects\n" +
	"- **Contraindications**: List contraindications\n" +
	"- **Important Interactions**: List significant interactions\n" +
	"If the image is blurry or unclear, respond with: **'Please retake the image for better clarity.'**"
