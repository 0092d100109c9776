package triage

import (
	"fmt"
	"strings"
)

// Resource 一条专业求助渠道。
type Resource struct {
	Name  string
	Phone string
	Note  string
}

// CrisisResources 墨西哥地区的危机求助渠道,与平台其余服务保持一致。
var CrisisResources = []Resource{
	{Name: "Línea de la Vida", Phone: "800-911-2000", Note: "gratuita, 24 horas"},
	{Name: "SAPTEL", Phone: "55 5259-8121", Note: "atención en crisis"},
	{Name: "Consejo Ciudadano", Phone: "55 5533-5533", Note: "chat y llamada"},
}

const crisisOpening = "Entiendo que estás pasando por un momento muy difícil, y me preocupa lo que me cuentas. Lo que sientes es real y válido.\n\n" +
	"Es importante que hables con alguien que pueda ayudarte de forma profesional ahora mismo:"

const crisisClosing = "No tienes que enfrentar esto solo/a. Hay personas capacitadas esperando para escucharte y ayudarte.\n\n" +
	"¿Hay alguien de confianza cerca de ti con quien puedas estar mientras llamas?"

// CrisisMessage assembles the fixed crisis payload: empathetic
// acknowledgment plus the enumerated resource contacts. Deterministic, no
// generator involved.
func CrisisMessage() string {
	var b strings.Builder
	b.WriteString(crisisOpening)
	b.WriteString("\n\n")
	for _, r := range CrisisResources {
		fmt.Fprintf(&b, "📞 **%s: %s** (%s)\n", r.Name, r.Phone, r.Note)
	}
	b.WriteString("\n")
	b.WriteString(crisisClosing)
	return b.String()
}

// FallbackMessage is returned when the generator fails for a well-formed
// request. It carries the primary hotline so a degraded service never
// leaves a user without a resource.
const FallbackMessage = "Lo siento, estoy teniendo dificultades técnicas en este momento. " +
	"Si necesitas hablar con alguien urgentemente, puedes llamar a la " +
	"Línea de la Vida: 800-911-2000 (24 horas, gratuita)."
