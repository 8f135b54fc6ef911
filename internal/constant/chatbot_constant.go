package constant

import "smartcity-be/pkg/chatbot"

const (
	ChatGreeting = "Hello! I'm your Smart City assistant. Ask me about routes, air quality, energy, waste, or traffic."

	ChatFallback = "I can help with: busiest routes, air quality, energy usage, waste alerts, and traffic congestion. Try asking about one of those!"

	ChatReplyRoutes = "The busiest routes today are:\n• R5 University Route (5,100 riders)\n• R1 Downtown Express (4,200 riders)\n• R3 Suburban Loop (3,500 riders)"

	ChatReplyAirQuality = "Air Quality:\n• Central Park area: AQI 42 (Good)\n• City Hall area: AQI 78 (Moderate)\n\nOverall city average: AQI 55 — Moderate"

	ChatReplyEnergy = "Current energy load: 3,840 MW of 5,200 MW capacity (73.8%)\n\nRenewable mix: 42%\n• Solar: 28%\n• Wind: 14%\n\nPeak hour today: 14:00"

	ChatReplyWaste = "⚠️ 2 bins need immediate attention:\n• Bin #6 Riverside: 95% full (8h since collection)\n• Bin #3 Main Street: 92% full (6h since collection)"

	ChatReplyTraffic = "Current density: 72%\n\nHot spots:\n• I-495 Eastbound: Heavy (12 mph avg)\n• Broadway & 5th: Moderate\n• Downtown: Light"
)

// ChatRules is matched in order; the first hit wins.
var ChatRules = []chatbot.Rule{
	{Trigger: "show busiest routes", Response: ChatReplyRoutes},
	{Trigger: "air quality status", Response: ChatReplyAirQuality},
	{Trigger: "energy usage today", Response: ChatReplyEnergy},
	{Trigger: "waste bin alerts", Response: ChatReplyWaste},
	{Trigger: "traffic congestion", Response: ChatReplyTraffic},
}

// ChatSuggestions are the quick-reply chips shown under the chat window.
var ChatSuggestions = []string{
	"Show busiest routes",
	"Air quality status",
	"Energy usage today",
	"Waste bin alerts",
	"Traffic congestion",
}
