package activity

// iconFallback marca combinaciones (module, action) desconocidas.
const iconFallback = "🔔"

var platformIcons = map[string]map[string]string{
	"users": {
		"created":   "👤",
		"updated":   "✏️",
		"suspended": "⛔",
		"inactive":  "⏸️",
		"active":    "✅",
		"archived":  "🗄️",
		"restored":  "♻️",
	},
	"tickets": {
		"created":  "🎫",
		"progress": "🟡",
		"resolved": "🟢",
		"reopened": "🔁",
		"replied":  "💬",
	},
	"doctors": {
		"assigned_patient":   "🩺",
		"unassigned_patient": "➖",
		"unassigned_all":     "🧹",
	},
}

var moduleIcons = map[string]string{
	"users":   "👥",
	"tickets": "🎫",
	"doctors": "🩺",
}

var healthIcons = map[string]string{
	"bp":      "🩸",
	"weight":  "⚖️",
	"glucose": "🧪",
}

// IconFor resuelve el ícono determinístico de un item por (kind, module, action).
func IconFor(kind Kind, module, action string) string {
	switch kind {
	case KindAppointment:
		return "📅"
	case KindHealth:
		if ic, ok := healthIcons[action]; ok {
			return ic
		}
		return iconFallback
	default:
		if actions, ok := platformIcons[module]; ok {
			if ic, ok := actions[action]; ok {
				return ic
			}
			return moduleIcons[module]
		}
		return iconFallback
	}
}
