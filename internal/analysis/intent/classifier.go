package intent

import (
	"errors"
	"regexp"
	"strings"

	"github.com/aura-plataforma/chatbot-service/internal/analysis/sentiment"
	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
)

// ErrEmptyMessage 表示消息为空或仅包含空白字符，调用方不得继续执行
// 后续的风险评估。
var ErrEmptyMessage = errors.New("message text is empty")

// 危机指示模式拥有最高优先级,任何一条命中都会强制判定为 crisis。
var crisisPatterns = compile([]string{
	`(suicid|matarme|quitarme la vida|no quiero vivir)`,
	`(acabar con todo|terminar con esto)`,
	`(autolesion|cortarme|hacerme daño)`,
	`(no puedo más|no aguanto más)`,
	`(quiero morir|deseo morir)`,
	`(sin salida|no hay esperanza)`,
})

var supportPatterns = compile([]string{
	`(me siento|siento que)`,
	`(triste|deprimid|ansios|sol[oa]\b|vacío)`,
	`(no sé qué hacer|necesito ayuda|ayúdame)`,
	`(miedo|preocupad|estresad|agobiad)`,
	`(nadie me entiende|nadie me quiere)`,
	`(problemas|dificultades|no puedo)`,
})

var greetingPatterns = compile([]string{
	`^(hola|hey|buenas|saludos|qué tal|cómo estás)`,
	`^(buenos días|buenas tardes|buenas noches)`,
	`^(hi|hello)\b`,
})

var infoPatterns = compile([]string{
	`(qué es|cómo funciona|explica|dime sobre)`,
	`(información|info|datos)`,
	`^(qué|cómo|cuándo|dónde|por qué)\b`,
})

func compile(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// Classifier 基于规则对消息意图进行完全确定性的分类。
type Classifier struct {
	supportThreshold float64
	extraCrisis      []*regexp.Regexp
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSupportThreshold overrides the negativity score above which negative
// sentiment alone maps the message to the support intent.
func WithSupportThreshold(threshold float64) Option {
	return func(c *Classifier) {
		if threshold > 0 {
			c.supportThreshold = threshold
		}
	}
}

// WithCrisisPatterns appends domain-expert crisis indicators to the built-in
// lexicon. Invalid expressions are dropped silently.
func WithCrisisPatterns(patterns []string) Option {
	return func(c *Classifier) {
		for _, p := range patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				continue
			}
			c.extraCrisis = append(c.extraCrisis, re)
		}
	}
}

// NewClassifier 创建意图分类器,默认 support 阈值为 0.6。
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{supportThreshold: 0.6}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify 将消息映射为唯一的意图。优先级:crisis > greeting(短消息) >
// support > information,无规则命中时回落到 information。
// 空白消息返回 ErrEmptyMessage。
func (c *Classifier) Classify(text string, mood sentiment.Result) (risk.Intent, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return "", ErrEmptyMessage
	}

	if anyMatch(normalized, crisisPatterns) || anyMatch(normalized, c.extraCrisis) {
		return risk.IntentCrisis, nil
	}

	// 简短的问候语在进入情感规则前优先处理,避免 "hola" 被误判。
	if len(strings.Fields(normalized)) <= 5 && anyMatch(normalized, greetingPatterns) {
		return risk.IntentGreeting, nil
	}

	if anyMatch(normalized, supportPatterns) {
		return risk.IntentSupport, nil
	}
	if mood.Label == sentiment.Negative && mood.Score >= c.supportThreshold {
		return risk.IntentSupport, nil
	}

	if anyMatch(normalized, infoPatterns) {
		return risk.IntentInformation, nil
	}

	return risk.IntentInformation, nil
}

func anyMatch(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
