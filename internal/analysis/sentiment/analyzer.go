package sentiment

import (
	"strings"
)

// Label 表示消息的情感极性标签。
type Label string

const (
	Positive Label = "POS"
	Negative Label = "NEG"
	Neutral  Label = "NEU"
)

// Result 给出情感分析结果。Score 为 [0,1] 区间内的负面强度得分。
type Result struct {
	Label Label
	Score float64
}

var negativeKeywords = []string{
	"triste", "tristeza", "deprimid", "ansios", "solo", "sola", "soledad",
	"vacío", "vacía", "llorar", "llorando", "dolor", "duele", "sufro",
	"sufriendo", "cansad", "agotad", "agobiad", "estresad", "preocupad",
	"desesperad", "miedo", "asustad", "perdid", "inútil", "fracas",
	"odio", "horrible", "fatal", "mal", "nadie me", "no puedo",
	"no sirvo", "me siento mal", "sin ganas", "sin fuerzas",
}

var positiveKeywords = []string{
	"feliz", "felicidad", "content", "alegr", "genial", "increíble",
	"gracias", "me encanta", "tranquil", "esperanza", "mejor", "bien",
	"logré", "conseguí", "orgullos", "motivad", "ilusionad", "emocionant",
}

// 强化词放大当前占优的情感桶，模拟情绪激烈程度。
var intensifiers = []string{
	"muy", "mucho", "mucha", "demasiado", "tanto", "tanta", "siempre",
	"nunca", "nada", "todo el tiempo", "últimamente",
}

const (
	keywordWeight     = 3
	intensifierWeight = 2
)

// Analyze 对文本执行确定性的词典情感打分，作为外部分类器不可用时的
// 保底路径。空白文本返回中性零分，重复调用同一文本结果一致。
func Analyze(text string) Result {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Result{Label: Neutral, Score: 0}
	}

	negScore := countHits(normalized, negativeKeywords) * keywordWeight
	posScore := countHits(normalized, positiveKeywords) * keywordWeight

	boost := countHits(normalized, intensifiers) * intensifierWeight
	exclamations := strings.Count(text, "!") + strings.Count(text, "¡")
	boost += exclamations

	switch {
	case negScore > posScore:
		negScore += boost
	case posScore > negScore:
		posScore += boost
	}

	if negScore == 0 && posScore == 0 {
		return Result{Label: Neutral, Score: 0}
	}

	if negScore >= posScore {
		return Result{Label: Negative, Score: normalize(negScore)}
	}
	return Result{Label: Positive, Score: 0}
}

func countHits(normalized string, keywords []string) int {
	hits := 0
	for _, word := range keywords {
		if word == "" {
			continue
		}
		if strings.Contains(normalized, word) {
			hits++
		}
	}
	return hits
}

// normalize 将原始命中得分压缩到 [0,1)，命中越多越接近 1。
func normalize(score int) float64 {
	return float64(score) / (float64(score) + 3.0)
}
