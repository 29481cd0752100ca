package ai

import (
	"context"
	"math/rand/v2"
)

var wrongGuesses = map[string][]string{
	"猫":       {"犬", "うさぎ", "ハムスター", "ライオン", "トラ"},
	"富士山":     {"ピラミッド", "テント", "アイスクリーム", "三角形", "東京タワー"},
	"寿司":      {"ケーキ", "ハンバーガー", "お弁当", "枕", "本"},
	"自転車":     {"バイク", "車", "三輪車", "扇風機", "メガネ"},
	"ロケット":    {"鉛筆", "ニンジン", "東京タワー", "矢印", "アイスクリーム"},
	"ひまわり":    {"太陽", "目玉焼き", "扇風機", "ライオン", "時計"},
	"ピアノ":     {"テーブル", "本棚", "はしご", "シマウマ", "キーボード"},
	"虹":       {"橋", "滑り台", "ベルト", "ヘビ", "アーチ"},
	"タコ":      {"クラゲ", "太陽", "花", "風船", "手"},
	"新幹線":     {"電車", "バス", "飛行機", "ミサイル", "弁当箱"},
	"アイスクリーム": {"マイク", "電球", "風船", "キノコ", "トーチ"},
	"恐竜":      {"トカゲ", "ドラゴン", "犬", "カンガルー", "鳥"},
	"花火":      {"星", "太陽", "爆発", "タコ", "クラゲ"},
	"ペンギン":    {"雪だるま", "修道女", "ボウリングピン", "スーツの人", "ナス"},
	"UFO":     {"帽子", "フリスビー", "目玉焼き", "土星", "クラゲ"},
}

var genericWrong = []string{
	"何かの動物？",
	"食べ物かな",
	"建物っぽい",
	"乗り物だと思う",
	"よくわからない...",
	"これは...花？",
	"人の顔？",
}

const (
	mockMinCorrectAttempt = 3
	mockCorrectChance     = 0.3
)

// Mock answers from a script of plausible mistakes and starts getting the
// word right from the third attempt.
type Mock struct {
	// Chance returns a value in [0,1); defaults to math/rand.
	Chance func() float64
}

func NewMock() *Mock {
	return &Mock{Chance: rand.Float64}
}

func (m *Mock) Guess(_ context.Context, req Request) Result {
	chance := m.Chance
	if chance == nil {
		chance = rand.Float64
	}
	if req.Attempt >= mockMinCorrectAttempt && chance() < mockCorrectChance {
		return Result{Text: req.Word, IsCorrect: true}
	}
	return Result{Text: scriptedWrong(req.Word, req.Attempt)}
}

func scriptedWrong(word string, attempt int) string {
	list, ok := wrongGuesses[word]
	if !ok {
		list = genericWrong
	}
	if attempt < 0 {
		attempt = 0
	}
	return list[attempt%len(list)]
}
