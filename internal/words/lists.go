package words

// Word is a guessable answer. Tier is 1 (easy) to 3 (hard); 0 means untiered.
type Word struct {
	Text string `json:"text"`
	Tier int    `json:"tier"`
}

// Subject is an incomplete template players finish in sketch mode.
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Instruction string `json:"instruction"`
}

func WordText(w Word) string { return w.Text }

func WordTier(w Word) int { return w.Tier }

func SubjectID(s Subject) string { return s.ID }

var BattleWords = []Word{
	{Text: "猫"},
	{Text: "富士山"},
	{Text: "寿司"},
	{Text: "自転車"},
	{Text: "ロケット"},
	{Text: "ひまわり"},
	{Text: "ピアノ"},
	{Text: "虹"},
	{Text: "タコ"},
	{Text: "新幹線"},
	{Text: "アイスクリーム"},
	{Text: "恐竜"},
	{Text: "花火"},
	{Text: "ペンギン"},
	{Text: "UFO"},
}

var OjamaWords = []Word{
	{Text: "猫", Tier: 1},
	{Text: "犬", Tier: 1},
	{Text: "花", Tier: 1},
	{Text: "山", Tier: 1},
	{Text: "海", Tier: 1},
	{Text: "空", Tier: 1},
	{Text: "雨", Tier: 1},
	{Text: "星", Tier: 1},
	{Text: "月", Tier: 1},
	{Text: "木", Tier: 1},
	{Text: "寿司", Tier: 2},
	{Text: "富士山", Tier: 2},
	{Text: "新幹線", Tier: 2},
	{Text: "ひまわり", Tier: 2},
	{Text: "ピアノ", Tier: 2},
	{Text: "ペンギン", Tier: 2},
	{Text: "ロケット", Tier: 2},
	{Text: "自転車", Tier: 2},
	{Text: "アイス", Tier: 2},
	{Text: "花火", Tier: 2},
	{Text: "アイスクリーム", Tier: 3},
	{Text: "ひまわり畑", Tier: 3},
	{Text: "観覧車", Tier: 3},
	{Text: "トランポリン", Tier: 3},
	{Text: "サッカーボール", Tier: 3},
	{Text: "パイナップル", Tier: 3},
	{Text: "ティラノサウルス", Tier: 3},
	{Text: "シンデレラ", Tier: 3},
	{Text: "プラネタリウム", Tier: 3},
	{Text: "ジェットコースター", Tier: 3},
}

var SketchSubjects = []Subject{
	{ID: "face", Name: "顔", Instruction: "目・鼻・口・髪を描こう！"},
	{ID: "house", Name: "家", Instruction: "窓・ドア・屋根を描こう！"},
	{ID: "animal", Name: "動物", Instruction: "足・顔・尻尾を描こう！"},
	{ID: "rocket", Name: "ロケット", Instruction: "本体・炎・窓を描こう！"},
	{ID: "fish", Name: "魚", Instruction: "ヒレ・目・模様を描こう！"},
}

var StyleCards = []string{
	"80年代レトロ",
	"粘土細工",
	"サイバーパンク",
	"水彩画",
	"ドット絵",
	"浮世絵",
	"アメコミ",
	"パステル",
}

const (
	DefaultPrompt      = "不思議な風景"
	DefaultDescription = "よくわからない画像"
)

// OjamaTier maps a 1-based round number to the word tier it samples.
func OjamaTier(round int) int {
	switch {
	case round <= 2:
		return 1
	case round <= 4:
		return 2
	default:
		return 3
	}
}
