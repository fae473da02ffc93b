package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/Dias221467/cf_social/internal/codeforces"
	"github.com/Dias221467/cf_social/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

const (
	defaultRecommendationCount = 25
	defaultStaleAfter          = 48 * time.Hour
	ratingBandWidth            = 200
)

// Recommendations is the response of GetRecommendations.
type Recommendations struct {
	Problems  []models.RecommendedProblem `json:"problems"`
	Rating    int                         `json:"rating"`
	Refreshed bool                        `json:"refreshed"`
	Degraded  bool                        `json:"degraded,omitempty"`
}

// RecommendationService maintains the per-user recommendation cache
// (cache-aside over the rating and ladder providers).
type RecommendationService struct {
	users      UserStore
	recs       RecommendationStore
	ratings    RatingProvider
	ladder     LadderProvider
	count      int
	staleAfter time.Duration
	now        func() time.Time
}

func NewRecommendationService(users UserStore, recs RecommendationStore, ratings RatingProvider, ladder LadderProvider, count int, staleAfter time.Duration) *RecommendationService {
	if count <= 0 {
		count = defaultRecommendationCount
	}
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &RecommendationService{
		users:      users,
		recs:       recs,
		ratings:    ratings,
		ladder:     ladder,
		count:      count,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// RatingBand returns the [start, end] ladder band for a rating: the rating
// rounded to the nearest hundred, and 200 above it.
func RatingBand(rating int) (int, int) {
	start := int(math.Floor(float64(rating)/100+0.5)) * 100
	return start, start + ratingBandWidth
}

// GetRecommendations returns the user's cached recommendations, dropping
// problems solved since they were cached and refreshing the set when it is
// empty or stale. A stale set is not refreshed while the profile lookup is
// failing.
func (s *RecommendationService) GetRecommendations(ctx context.Context, username string) (*Recommendations, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "failed to load user")
	}

	rating, solved, degraded := s.fetchProfile(ctx, username)

	cached, err := s.recs.GetRecommendations(ctx, user.ID)
	if err != nil {
		return nil, storeError(err, "failed to load recommendations")
	}

	var solvedIDs []string
	kept := cached[:0]
	for _, p := range cached {
		if _, ok := solved[p.ProblemID]; ok {
			solvedIDs = append(solvedIDs, p.ProblemID)
			continue
		}
		kept = append(kept, p)
	}
	cached = kept
	if len(solvedIDs) > 0 {
		if _, err := s.recs.DeleteRecommendations(ctx, user.ID, solvedIDs); err != nil {
			return nil, storeError(err, "failed to drop solved recommendations")
		}
	}

	result := &Recommendations{Problems: cached, Rating: rating, Degraded: degraded}
	if len(cached) > 0 && !s.isStale(cached) {
		return result, nil
	}
	// A fallback profile would rebuild the set around the default rating,
	// so an existing set is kept until the provider answers again.
	if len(cached) > 0 && degraded {
		logrus.WithField("username", username).Warn("Profile unavailable, keeping stale recommendations")
		return result, nil
	}

	fresh, err := s.refresh(ctx, user, rating, solved)
	if err != nil {
		if len(cached) > 0 {
			logrus.WithError(err).WithField("username", username).Warn("Recommendation refresh failed, serving cached set")
			result.Degraded = true
			return result, nil
		}
		return nil, err
	}

	result.Problems = fresh
	result.Refreshed = true
	return result, nil
}

func (s *RecommendationService) isStale(cached []models.RecommendedProblem) bool {
	cutoff := s.now().Add(-s.staleAfter)
	for _, p := range cached {
		if p.LastUpdated.Before(cutoff) {
			return true
		}
	}
	return false
}

// fetchProfile loads the rating and the solved set concurrently. Either call
// may fail; the rating then defaults to 800 and the solved set to empty.
func (s *RecommendationService) fetchProfile(ctx context.Context, handle string) (int, map[string]struct{}, bool) {
	var (
		infos     []codeforces.UserInfo
		infoErr   error
		solved    []string
		solvedErr error
		wg        conc.WaitGroup
	)
	wg.Go(func() { infos, infoErr = s.ratings.GetUserInfo(ctx, handle) })
	wg.Go(func() { solved, solvedErr = s.ratings.GetSolvedProblems(ctx, handle) })
	wg.Wait()

	rating := codeforces.DefaultRating
	degraded := false
	if infoErr != nil {
		logrus.WithError(infoErr).WithField("handle", handle).Warn("Failed to fetch rating, using default")
		degraded = true
	} else if len(infos) > 0 {
		rating = infos[0].RatingOrDefault()
	}

	solvedSet := make(map[string]struct{}, len(solved))
	if solvedErr != nil {
		logrus.WithError(solvedErr).WithField("handle", handle).Warn("Failed to fetch submissions")
		degraded = true
	}
	for _, id := range solved {
		solvedSet[id] = struct{}{}
	}
	return rating, solvedSet, degraded
}

func (s *RecommendationService) refresh(ctx context.Context, user *models.User, rating int, solved map[string]struct{}) ([]models.RecommendedProblem, error) {
	start, end := RatingBand(rating)
	ladder, err := s.ladder.GetLadder(ctx, start, end)
	if err != nil {
		return nil, providerError(err)
	}

	seen := make(map[string]struct{}, len(ladder))
	candidates := make([]codeforces.LadderProblem, 0, len(ladder))
	for _, p := range ladder {
		id := p.ProblemID()
		if _, ok := solved[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		candidates = append(candidates, p)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.ProblemID() < b.ProblemID()
	})
	if len(candidates) > s.count {
		candidates = candidates[:s.count]
	}

	now := s.now()
	problems := make([]models.RecommendedProblem, 0, len(candidates))
	for _, p := range candidates {
		problems = append(problems, models.RecommendedProblem{
			UserID:      user.ID,
			ProblemID:   p.ProblemID(),
			Name:        p.Name,
			Rating:      p.Rating,
			Tags:        p.Tags,
			SolvedCount: p.Frequency,
			Link:        p.Link(),
			LastUpdated: now,
		})
	}

	if err := s.recs.ReplaceRecommendations(ctx, user.ID, problems); err != nil {
		return nil, storeError(err, "failed to store recommendations")
	}

	logrus.WithFields(logrus.Fields{
		"username": user.Username,
		"band":     []int{start, end},
		"count":    len(problems),
	}).Info("Recommendations refreshed")
	return problems, nil
}

// PurgeStale drops cached recommendations not refreshed within olderThan.
func (s *RecommendationService) PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.recs.DeleteStaleRecommendations(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, storeError(err, "failed to purge recommendations")
	}
	return n, nil
}
