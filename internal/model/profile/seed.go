package profile

import (
	"github.com/zhouzirui/padel-assistant/backend/internal/analysis/intent"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/catalog"
)

// Seed provides the built-in assistant profiles: the public chat bot, the
// admin assistant and the player coach.
func Seed() []Profile {
	return []Profile{chatbotProfile(), adminProfile(), coachProfile()}
}

func chatbotProfile() Profile {
	return Profile{
		ID:       "chatbot",
		Name:     "Asistente AI",
		Title:    "Asistente del club",
		Greeting: "¡Hola! ¿En qué puedo ayudarte?\n\n• Información sobre torneos\n• Consejos técnicos\n• Reglas del juego\n• Reserva de canchas\n• Rankings y estadísticas",
		PromptHint: "Eres el asistente de un club de pádel. Responde en español, breve y cordial, " +
			"sobre torneos, rankings, reservas de canchas, reglas y membresías.",
		Categories: []catalog.Category{
			{Name: "Herramientas AI", Actions: []catalog.Definition{
				{Kind: "generate-content", Label: "Generar Contenido"},
				{Kind: "analyze-metrics", Label: "Analizar Métricas"},
				{Kind: "optimize-targeting", Label: "Optimizar Segmentación"},
				{Kind: "image-editor", Label: "Editor de Imágenes"},
				{Kind: "content-ideas", Label: "Ideas de Contenido"},
			}},
		},
		Replies: []intent.Rule{
			{Intent: "tournament", Keywords: []string{"torneo"}, Reply: "Los próximos torneos están programados para abril. ¿Te gustaría ver el calendario completo?"},
			{Intent: "ranking", Keywords: []string{"ranking"}, Reply: "Actualmente tenemos más de 1,000 jugadores en nuestro sistema de ranking. ¿Quieres consultar tu posición?"},
			{Intent: "court", Keywords: []string{"cancha"}, Reply: "Contamos con 12 canchas disponibles para reserva. ¿Te gustaría ver la disponibilidad?"},
			{Intent: "rules", Keywords: []string{"regla"}, Reply: "Las reglas oficiales del padel están disponibles en nuestra sección de recursos. ¿Necesitas alguna aclaración específica?"},
			{Intent: "pricing", Keywords: []string{"precio"}, Reply: "Ofrecemos diferentes planes de membresía, incluyendo nuestra exclusiva Membresía Platino. ¿Te gustaría conocer más detalles?"},
		},
		FallbackReply: "Entiendo tu consulta. ¿Te gustaría que te proporcione más información sobre algún aspecto específico del padel?",
		ActionResults: map[string]string{
			"generate-content": "El contenido ha sido generado exitosamente.",
			"image-editor":     "La imagen ha sido procesada y guardada.",
		},
	}
}

func adminProfile() Profile {
	return Profile{
		ID:       "admin",
		Name:     "Asistente de administración",
		Title:    "Panel de administración",
		Greeting: "¿En qué puedo ayudarte?\n\n• Gestión de usuarios\n• Moderación de contenido\n• Análisis de métricas\n• Gestión de torneos\n• Reportes y estadísticas",
		PromptHint: "Eres el asistente del panel de administración de una plataforma de pádel. " +
			"Ayuda con moderación, métricas, torneos y usuarios, y sugiere la acción adecuada.",
		DefaultCategory: "Moderación",
		Categories: []catalog.Category{
			{Name: "Moderación", Actions: []catalog.Definition{
				{Kind: "moderate_content", Label: "Moderar Contenido"},
				{Kind: "review_reports", Label: "Revisar Reportes"},
				{Kind: "ban_user", Label: "Sancionar Usuario"},
			}},
			{Name: "Análisis", Actions: []catalog.Definition{
				{Kind: "analyze_metrics", Label: "Analizar Métricas"},
				{Kind: "generate_report", Label: "Generar Reporte"},
				{Kind: "user_activity", Label: "Actividad Usuarios"},
			}},
			{Name: "Torneos", Actions: []catalog.Definition{
				{Kind: "approve_tournament", Label: "Aprobar Torneo"},
				{Kind: "schedule_event", Label: "Programar Evento"},
				{Kind: "verify_results", Label: "Verificar Resultados"},
			}},
			{Name: "Usuarios", Actions: []catalog.Definition{
				{Kind: "verify_user", Label: "Verificar Usuario"},
				{Kind: "review_appeals", Label: "Revisar Apelaciones"},
				{Kind: "system_alerts", Label: "Alertas Sistema"},
			}},
		},
		FallbackReply: "Entiendo tu consulta. ¿Te gustaría que realice alguna acción específica?",
		ActionResults: map[string]string{
			"moderate_content":   "Se han revisado 15 elementos reportados. 3 requieren atención inmediata.",
			"review_reports":     "Hay 5 nuevos reportes pendientes de revisión.",
			"ban_user":           "Se ha aplicado la sanción temporal al usuario especificado.",
			"analyze_metrics":    "Análisis completado. Se detectó un aumento del 25% en la actividad.",
			"generate_report":    "Reporte generado y enviado a tu correo.",
			"user_activity":      "Actividad de usuarios analizada. Picos detectados en horario nocturno.",
			"approve_tournament": "Torneo verificado y aprobado para publicación.",
			"schedule_event":     "Evento programado y notificaciones enviadas.",
			"verify_results":     "Resultados verificados y ranking actualizado.",
			"verify_user":        "Usuario verificado exitosamente.",
			"review_appeals":     "2 apelaciones revisadas y procesadas.",
			"system_alerts":      "Sistema funcionando correctamente. No hay alertas críticas.",
		},
	}
}

func coachProfile() Profile {
	return Profile{
		ID:       "coach",
		Name:     "AI Coach Personal",
		Title:    "Entrenador del jugador",
		Greeting: "Soy tu AI Coach. Puedo actualizar tu análisis, proponerte entrenamientos y estimar tus próximos objetivos.",
		PromptHint: "Eres un entrenador de pádel. Da consejos concretos de técnica, físico y táctica, " +
			"basados en las estadísticas del jugador.",
		Categories: []catalog.Category{
			{Name: "Análisis", Actions: []catalog.Definition{
				{Kind: "refresh_insights", Label: "Actualizar Análisis"},
				{Kind: "analyze_stats", Label: "Analizar Estadísticas"},
			}},
			{Name: "Entrenamiento", Actions: []catalog.Definition{
				{Kind: "training_plan", Label: "Ver Plan de Entrenamiento"},
				{Kind: "recommendations", Label: "Recomendaciones Personalizadas"},
			}},
			{Name: "Torneos", Actions: []catalog.Definition{
				{Kind: "tournament_details", Label: "Ver Detalles"},
				{Kind: "predictions", Label: "Predicciones y Objetivos"},
			}},
		},
		Replies: []intent.Rule{
			{Intent: "endurance", Keywords: []string{"resistencia", "cansancio", "físico"}, Reply: "Tu porcentaje de victorias ha disminuido un 15% en partidos largos. Recomendamos enfocarte en ejercicios de resistencia."},
			{Intent: "serve", Keywords: []string{"saque"}, Reply: "Tu saque es tu mejor arma, con un 78% de efectividad. Mantén este nivel y considera variantes tácticas."},
			{Intent: "volley", Keywords: []string{"volea"}, Reply: "Te recomiendo la sesión de Técnica de Volea con Carlos Ramírez (15 min, nivel intermedio)."},
		},
		FallbackReply: "Cuéntame qué aspecto de tu juego quieres mejorar: técnica, físico o táctica.",
		ActionResults: map[string]string{
			"refresh_insights":   "Análisis actualizado: tu porcentaje de victorias ha disminuido un 15% en partidos largos; tu saque mantiene un 78% de efectividad.",
			"analyze_stats":      "Tu saque es tu mejor arma, con un 78% de efectividad. Mantén este nivel y considera variantes tácticas.",
			"training_plan":      "Plan de Preparación Física de 4 semanas con Miguel Torres, enfocado en resistencia.",
			"recommendations":    "Técnica de Volea (15 min, 95% match) • Estrategia de Dobles (45 min, 88% match) • Preparación Física (4 semanas, 92% match)",
			"tournament_details": "Basado en tu nivel actual, tienes altas probabilidades de éxito en el Torneo Regional de Mayo.",
			"predictions":        "Próximo ranking estimado: #28 (+5). Probabilidad de victoria: 68% (+12%). Siguiente objetivo: Top 25 en 2 meses.",
		},
	}
}
