package services

import (
	"context"
	"sort"
	"strings"

	"github.com/Dias221467/cf_social/internal/codeforces"
	"github.com/sirupsen/logrus"
)

type LeaderboardEntry struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Rank     string `json:"rank"`
	Avatar   string `json:"avatar"`
	IsSelf   bool   `json:"isSelf"`
}

type Leaderboard struct {
	Entries  []LeaderboardEntry `json:"entries"`
	Degraded bool               `json:"degraded,omitempty"`
}

// LeaderboardService ranks a user against the people they follow.
type LeaderboardService struct {
	follows  *FollowService
	provider RatingProvider
}

func NewLeaderboardService(follows *FollowService, provider RatingProvider) *LeaderboardService {
	return &LeaderboardService{follows: follows, provider: provider}
}

// GetLeaderboard returns viewer and everyone viewer follows, by rating.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, viewer string) (*Leaderboard, error) {
	if err := requireActor(viewer); err != nil {
		return nil, err
	}

	following, err := s.follows.ListRelationships(ctx, viewer, ListFollowing)
	if err != nil {
		return nil, err
	}
	handles := append([]string{viewer}, following...)

	board := &Leaderboard{}
	infoByHandle := map[string]codeforces.UserInfo{}
	infos, err := s.provider.GetUserInfo(ctx, handles...)
	if err != nil {
		logrus.WithError(err).WithField("username", viewer).Warn("Leaderboard falling back to default ratings")
		board.Degraded = true
	}
	for _, info := range infos {
		infoByHandle[strings.ToLower(info.Handle)] = info
	}

	board.Entries = make([]LeaderboardEntry, 0, len(handles))
	for _, h := range handles {
		info, ok := infoByHandle[strings.ToLower(h)]
		if !ok {
			info = codeforces.DefaultUserInfo(h)
		}
		board.Entries = append(board.Entries, LeaderboardEntry{
			Username: h,
			Rating:   info.RatingOrDefault(),
			Rank:     info.Rank,
			Avatar:   info.Avatar,
			IsSelf:   h == viewer,
		})
	}

	sort.SliceStable(board.Entries, func(i, j int) bool {
		a, b := board.Entries[i], board.Entries[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.Username < b.Username
	})
	return board, nil
}
