package analysis

const systemPrompt = "You are a dermatology AI assistant. Analyze skin images and provide detailed assessment. " +
	"Always include: condition description, risk level (low/moderate/high), and 3-5 specific recommendations. " +
	"Format your response as JSON with keys: description, riskLevel, recommendations (array), disclaimer."

const userPrompt = "Analyze this skin image. Identify any visible conditions, assess risk level, and provide recommendations. " +
	"Remember this is for educational purposes only."

func SystemPrompt() string {
	return systemPrompt
}

func UserPrompt() string {
	return userPrompt
}
