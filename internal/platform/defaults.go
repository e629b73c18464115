package platform

import "github.com/maheshrc27/postflow/internal/models"

func Default() Tables {
	return NewTables(defaultProfiles())
}

func defaultProfiles() map[models.Platform]Profile {
	return map[models.Platform]Profile{
		models.PlatformTiktok: {
			Baseline: models.EngagementBaseline{
				Likes: 1000, Comments: 50, Shares: 100, Saves: 80,
				Reach: 15000, Impressions: 20000, EngagementRate: 0.08,
			},
			PeakHours:      []int{12, 15, 19, 20, 21},
			PeakDays:       []int{2, 4, 5},
			QuietHours:     []int{3, 4, 5, 6},
			LateNightBoost: 0.15,
			Content: ContentProfile{
				MinChars: 20, MaxChars: 150,
				MinWords: 3, MaxWords: 30,
				MinHashtags: 3, MaxHashtags: 5,
				MentionsHelp: true,
			},
		},
		models.PlatformInstagram: {
			Baseline: models.EngagementBaseline{
				Likes: 500, Comments: 25, Shares: 15, Saves: 40,
				Reach: 5000, Impressions: 7000, EngagementRate: 0.05,
			},
			PeakHours:  []int{11, 13, 17, 19},
			PeakDays:   []int{1, 3, 5},
			QuietHours: []int{1, 2, 3, 4, 5},
			Content: ContentProfile{
				MinChars: 50, MaxChars: 300,
				MinWords: 10, MaxWords: 60,
				MinHashtags: 5, MaxHashtags: 15,
				MentionsHelp: true,
			},
		},
		models.PlatformYoutube: {
			Baseline: models.EngagementBaseline{
				Likes: 300, Comments: 40, Shares: 20, Saves: 30,
				Reach: 8000, Impressions: 10000, EngagementRate: 0.04,
			},
			PeakHours:  []int{14, 15, 16, 17, 20},
			PeakDays:   []int{4, 5, 6},
			QuietHours: []int{1, 2, 3, 4, 5, 6},
			Content: ContentProfile{
				MinChars: 100, MaxChars: 1000,
				MinWords: 20, MaxWords: 200,
				MinHashtags: 1, MaxHashtags: 3,
			},
		},
		models.PlatformTwitter: {
			Baseline: models.EngagementBaseline{
				Likes: 100, Comments: 10, Shares: 20, Saves: 5,
				Reach: 3000, Impressions: 5000, EngagementRate: 0.025,
			},
			PeakHours:  []int{8, 9, 12, 17, 18},
			PeakDays:   []int{2, 3, 4},
			QuietHours: []int{0, 1, 2, 3, 4, 5},
			Content: ContentProfile{
				MinChars: 40, MaxChars: 280,
				MinWords: 5, MaxWords: 40,
				MinHashtags: 1, MaxHashtags: 2,
				MentionsHelp: true,
			},
		},
		models.PlatformLinkedin: {
			Baseline: models.EngagementBaseline{
				Likes: 80, Comments: 8, Shares: 10, Saves: 5,
				Reach: 2000, Impressions: 3000, EngagementRate: 0.03,
			},
			PeakHours:    []int{7, 8, 12, 17},
			PeakDays:     []int{2, 3, 4},
			QuietHours:   []int{0, 1, 2, 3, 4, 5, 22, 23},
			WorkdayBoost: 0.1,
			Content: ContentProfile{
				MinChars: 150, MaxChars: 1300,
				MinWords: 25, MaxWords: 200,
				MinHashtags: 3, MaxHashtags: 5,
				MentionsHelp: true,
			},
		},
		models.PlatformFacebook: {
			Baseline: models.EngagementBaseline{
				Likes: 150, Comments: 15, Shares: 12, Saves: 8,
				Reach: 4000, Impressions: 6000, EngagementRate: 0.02,
			},
			PeakHours:  []int{9, 13, 15},
			PeakDays:   []int{3, 4, 5},
			QuietHours: []int{0, 1, 2, 3, 4, 5},
			Content: ContentProfile{
				MinChars: 40, MaxChars: 250,
				MinWords: 8, MaxWords: 50,
				MinHashtags: 0, MaxHashtags: 2,
			},
		},
	}
}
