package service

import (
	"fmt"
	"time"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/storage"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
	"github.com/yndnr/quizrally-go/pkg/token"
)

// SeedConfig controls the data written into an empty store.
type SeedConfig struct {
	AdminNickname string
	AdminPassword string

	// DemoAccounts adds two participants, one of them with a finished quiz.
	DemoAccounts bool
}

// DefaultSeedConfig returns the default seed settings.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		AdminNickname: "admin",
		AdminPassword: "admin123",
		DemoAccounts:  true,
	}
}

type demoAccount struct {
	user     domain.User
	password string
	answers  []string
}

// NewSeeder returns the seeder used when no snapshot can be loaded.
// Password hashing happens here, before the engine loop runs the seeder.
func NewSeeder(cfg SeedConfig, now time.Time) (storage.Seeder, error) {
	if cfg.AdminNickname == "" || cfg.AdminPassword == "" {
		return nil, fmt.Errorf("seed: admin nickname and password are required")
	}
	now = now.UTC()

	accounts := []demoAccount{{
		user: domain.User{
			ID:       1,
			Nickname: cfg.AdminNickname,
			RealName: "システム管理者",
			AgeGroup: "adult",
			Gender:   "other",
			IsAdmin:  true,
		},
		password: cfg.AdminPassword,
	}}
	if cfg.DemoAccounts {
		accounts = append(accounts,
			demoAccount{
				user: domain.User{
					ID:       2,
					Nickname: "test",
					RealName: "テストユーザー",
					AgeGroup: "elementary",
					Gender:   "other",
				},
				password: "test123",
				answers:  []string{"A", "B", "A", "C", "B", "A", "C", "B", "C", "A"},
			},
			demoAccount{
				user: domain.User{
					ID:       3,
					Nickname: "aaa",
					RealName: "テストユーザー2",
					AgeGroup: "junior_high",
					Gender:   "other",
				},
				password: "aaa123",
			},
		)
	}

	for i := range accounts {
		hash, err := token.HashPassword(accounts[i].password)
		if err != nil {
			return nil, fmt.Errorf("seed: hash password: %w", err)
		}
		accounts[i].user.PasswordHash = hash
		accounts[i].user.CreatedAt = now
	}

	return func(st *memory.Store) error {
		for _, q := range defaultQuestions() {
			st.Questions.Set(q.ID, q)
		}
		for _, acc := range accounts {
			st.Users.Set(acc.user.ID, acc.user)
			if len(acc.answers) > 0 {
				seedFinishedQuiz(st, acc.user.ID, acc.answers, now)
			}
		}
		return nil
	}, nil
}

// seedFinishedQuiz records answers for questions 1..n and a completion.
func seedFinishedQuiz(st *memory.Store, userID int, choices []string, now time.Time) {
	correct := 0
	for i, choice := range choices {
		num := i + 1
		q, _ := st.QuestionByNumber(num)
		a := domain.Answer{
			UserID:         userID,
			QuestionNumber: num,
			Choice:         choice,
			IsCorrect:      q.CorrectAnswer == choice,
			AnsweredAt:     now,
		}
		if a.IsCorrect {
			correct++
		}
		st.Answers.Set(domain.AnswerKey(userID, num), a)
	}

	total := len(choices)
	score := float64(correct) / float64(total) * 100
	st.Completions.Set(userID, domain.Completion{
		UserID:         userID,
		CompletedAt:    now,
		Score:          score,
		BaseScore:      score,
		CorrectCount:   correct,
		TotalQuestions: total,
	})
	st.Rankings.Set(userID, domain.Ranking{
		UserID:       userID,
		Score:        score,
		CorrectCount: correct,
		UpdatedAt:    now,
	})
}

func defaultQuestions() []domain.Question {
	return []domain.Question{
		{
			ID: 1, Number: 1,
			Text:          "北陸製菓の会社ができたのはいつでしょうか？",
			ChoiceA:       "大正7年（1918年）",
			ChoiceB:       "昭和25年（1950年）",
			ChoiceC:       "昭和40年（1965年）",
			ChoiceD:       "昭和45年（1970年）",
			CorrectAnswer: "A",
			Explanation:   "北陸製菓は大正7年（1918年）に創業しました。100年以上もの長い歴史を持つ老舗のお菓子会社で、長年にわたってみんなに愛される美味しいお菓子を作り続けています。",
		},
		{
			ID: 2, Number: 2,
			Text:          "北陸製菓が一番大切にしていることで正しいのはどれでしょうか？",
			ChoiceA:       "安い商品をたくさん作る",
			ChoiceB:       "お客様に喜んでもらえる商品作り",
			ChoiceC:       "新しい商品だけを作る",
			ChoiceD:       "機械だけで作る",
			CorrectAnswer: "B",
			Explanation:   "北陸製菓は「お客様に喜んでもらえる商品作り」を一番大切にしています。美味しくて安全なお菓子を作って、みんなが笑顔になれるように心を込めて作っています。",
		},
		{
			ID: 3, Number: 3,
			Text:          "北陸製菓の「ビーバー」というお菓子の特徴はどれでしょうか？",
			ChoiceA:       "チョコレート味だけ",
			ChoiceB:       "固くて食べにくい",
			ChoiceC:       "サクサクした食感",
			ChoiceD:       "冷たいお菓子",
			CorrectAnswer: "C",
			Explanation:   "ビーバーはサクサクした軽い食感が特徴のお菓子です。北陸製菓の技術と工夫により、誰でも食べやすく美味しいお菓子として多くの人に愛されています。",
		},
		{
			ID: 4, Number: 4,
			Text:          "北陸製菓が商品を作るときに一番気をつけていることは何でしょうか？",
			ChoiceA:       "早く作ること",
			ChoiceB:       "安全で美味しいこと",
			ChoiceC:       "見た目だけきれいにすること",
			ChoiceD:       "安い材料を使うこと",
			CorrectAnswer: "B",
			Explanation:   "北陸製菓では「安全で美味しいこと」を一番大切にしています。みんなが安心して食べられるように、きちんと確認して美味しいお菓子を作っています。",
		},
		{
			ID: 5, Number: 5,
			Text:          "北陸製菓の工場では、どのような工夫をしているでしょうか？",
			ChoiceA:       "機械だけで作っている",
			ChoiceB:       "衛生管理を徹底している",
			ChoiceC:       "外で作っている",
			ChoiceD:       "一人だけで作っている",
			CorrectAnswer: "B",
			Explanation:   "北陸製菓の工場ではとてもきれいにしています。清潔で安全なお菓子を作るために、働く人みんなで協力して美味しいお菓子作りをしています。",
		},
		{
			ID: 6, Number: 6,
			Text:          "北陸製菓が地域のために行っている活動はどれでしょうか？",
			ChoiceA:       "地元の材料を使う",
			ChoiceB:       "工場見学を受け入れる",
			ChoiceC:       "地域のイベントに参加する",
			ChoiceD:       "上記すべて",
			CorrectAnswer: "D",
			Explanation:   "北陸製菓は地域との繋がりを大切にしています。地元の材料を使ったり、工場見学を受け入れたり、地域のイベントに参加するなど、地域の皆さんと一緒に成長することを大切にしています。",
		},
		{
			ID: 7, Number: 7,
			Text:          "北陸製菓の商品づくりで大切にしている「伝統」とは何でしょうか？",
			ChoiceA:       "昔からの美味しい作り方",
			ChoiceB:       "古い機械だけを使う",
			ChoiceC:       "同じ味だけを作る",
			ChoiceD:       "昔の包装紙を使う",
			CorrectAnswer: "A",
			Explanation:   "北陸製菓では昔から受け継がれた美味しい作り方を大切にしています。新しい技術も取り入れながら、伝統的な美味しさを守り続けています。",
		},
		{
			ID: 8, Number: 8,
			Text:          "北陸製菓が環境のためにしていることで正しいのはどれでしょうか？",
			ChoiceA:       "包装材料の工夫",
			ChoiceB:       "エネルギーの節約",
			ChoiceC:       "ゴミを減らす工夫",
			ChoiceD:       "上記すべて",
			CorrectAnswer: "D",
			Explanation:   "北陸製菓は地球環境を大切にしています。包装材料を工夫したり、エネルギーを節約したり、ゴミを減らしたりして、美味しいお菓子作りと環境保護の両方を大切にしています。",
		},
		{
			ID: 9, Number: 9,
			Text:          "北陸製菓が新しい商品を作るときに一番大切にしていることは何でしょうか？",
			ChoiceA:       "流行に合わせる",
			ChoiceB:       "お客様の声を聞く",
			ChoiceC:       "値段を安くする",
			ChoiceD:       "見た目をかっこよくする",
			CorrectAnswer: "B",
			Explanation:   "北陸製菓ではお客様の声をとても大切にしています。どんなお菓子が欲しいか、どうしたらもっと美味しくなるかを聞いて、みんなに喜んでもらえる商品作りをしています。",
		},
		{
			ID: 10, Number: 10,
			Text:          "北陸製菓の「これからの目標」で正しいのはどれでしょうか？",
			ChoiceA:       "もっとたくさんの人に美味しいお菓子を届ける",
			ChoiceB:       "安全で安心なお菓子作りを続ける",
			ChoiceC:       "地域の皆さんと一緒に成長する",
			ChoiceD:       "上記すべて",
			CorrectAnswer: "D",
			Explanation:   "北陸製菓はこれからも、もっとたくさんの人に美味しいお菓子を届けたり、安全で安心なお菓子作りを続けたり、地域の皆さんと一緒に成長していくことを目標にしています。",
		},
	}
}
