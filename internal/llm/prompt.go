package llm

const extractSystemPrompt = `You are a helpful assistant that extracts specific deal information from restaurant website text. Your task is to identify the dish on special, the day it's offered, its price, and an optional time window. Provide only this information in a JSON array of objects with keys 'dish', 'price', 'day_of_week', 'start_time', 'end_time' and 'notes'. If any information is missing, use null for that key. For day_of_week, use lowercase day names like 'monday', 'tuesday', etc., or 'everyday' for deals that run all week. For start_time and end_time use 24-hour 'HH:MM'. Return only valid JSON with no surrounding text.`

func buildExtractPrompt(pageText string) string {
	return "Extract the deal information from the following text and return it in JSON format:\n\n" + pageText
}
