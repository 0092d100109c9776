package ai

import (
	"fmt"
	"strings"

	"github.com/aura-plataforma/chatbot-service/internal/analysis/sentiment"
	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
)

// auraDirectives 是 AURA 助手的基础系统提示词,定义人格与回复准则。
const auraDirectives = `Eres AURA, un asistente de bienestar emocional diseñado para apoyar a jóvenes.

## Tu Personalidad
- Eres empático, cálido y comprensivo
- Usas un tono cercano pero respetuoso
- Nunca juzgas ni minimizas los sentimientos
- Ofreces apoyo sin dar consejos médicos específicos

## Directrices de Respuesta

### Para situaciones NORMALES:
- Responde de forma conversacional y amigable
- Fomenta la expresión emocional
- Sugiere actividades positivas cuando sea apropiado

### Para situaciones de APOYO EMOCIONAL:
- Valida los sentimientos del usuario
- Usa frases como "Entiendo cómo te sientes" o "Es normal sentirse así"
- Ofrece perspectiva sin minimizar
- Sugiere recursos de la comunidad AURA

### Para situaciones de RIESGO MODERADO:
- Prioriza la validación emocional
- Sugiere hablar con alguien de confianza
- Menciona que hay profesionales disponibles para ayudar
- Mantén un tono esperanzador pero realista

## Limitaciones
- NO eres un profesional de salud mental
- NO puedes diagnosticar condiciones
- NO debes dar consejos médicos específicos
- SIEMPRE deriva a profesionales en casos serios

## Instrucción
Responde al siguiente mensaje del usuario de forma empática y apropiada según el contexto proporcionado.
Responde en español, de forma natural y conversacional.
Mantén tu respuesta concisa (máximo 3-4 párrafos).`

// BuildSystemPrompt 将基础提示词与本次请求的分诊上下文拼接。
func BuildSystemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(auraDirectives)
	b.WriteString("\n\n")
	b.WriteString(BuildContext(req))
	return b.String()
}

// BuildContext renders the per-request triage context injected into the
// system prompt as contextual hints for the generator.
func BuildContext(req Request) string {
	lines := []string{
		"=== CONTEXTO DEL USUARIO ===",
		"",
		fmt.Sprintf("ID de Usuario: %s", truncateID(req.UserID)),
		"",
		"--- Análisis del Mensaje Actual ---",
		sentimentContext(req.Sentiment),
		fmt.Sprintf("Intención detectada: %s", req.Intent),
		"",
		"--- Perfil Histórico de Comportamiento ---",
		profileContext(req.Profile),
		"",
		"--- Evaluación General ---",
		fmt.Sprintf("Nivel de riesgo combinado: %s", req.Level),
	}

	return strings.Join(lines, "\n")
}

func sentimentContext(mood sentiment.Result) string {
	tone := "neutro"
	switch mood.Label {
	case sentiment.Negative:
		tone = "negativo"
	case sentiment.Positive:
		tone = "positivo"
	}

	intensity := "baja"
	switch {
	case mood.Score > 0.6:
		intensity = "alta"
	case mood.Score > 0.3:
		intensity = "moderada"
	}

	return fmt.Sprintf("Tono emocional del mensaje: %s (intensidad %s, negatividad: %.0f%%)",
		tone, intensity, mood.Score*100)
}

func profileContext(profile *risk.ProfileContext) string {
	if profile == nil {
		return "Perfil del usuario: sin datos históricos disponibles."
	}

	level := "desconocido"
	switch profile.PriorLevel {
	case risk.LevelAlto:
		level = "alto riesgo psicoemocional"
	case risk.LevelModerado:
		level = "riesgo moderado"
	case risk.LevelBajo:
		level = "bajo riesgo"
	}

	factors := "sin factores significativos"
	if len(profile.RiskFactors) > 0 {
		factors = strings.Join(profile.RiskFactors, ", ")
	}

	return fmt.Sprintf("Perfil del usuario: %s. Factores observados: %s.", level, factors)
}
