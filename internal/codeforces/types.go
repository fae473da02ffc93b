package codeforces

import (
	"errors"
	"fmt"
)

// DefaultRating is used wherever a rating is unknown: unrated handles and
// provider outages.
const DefaultRating = 800

const unratedRank = "unrated"

var (
	// ErrUnavailable wraps every transport, status and decoding failure.
	ErrUnavailable = errors.New("rating provider unavailable")

	// ErrHandleNotFound is returned when Codeforces does not know a handle.
	ErrHandleNotFound = errors.New("codeforces handle not found")
)

// UserInfo is the strict internal view of a Codeforces user.info entry.
type UserInfo struct {
	Handle    string `json:"handle"`
	Rated     bool   `json:"rated"`
	Rating    int    `json:"rating"`
	MaxRating int    `json:"maxRating"`
	Rank      string `json:"rank"`
	MaxRank   string `json:"maxRank"`
	Avatar    string `json:"avatar"`
}

// RatingOrDefault returns the rating, or DefaultRating for unrated handles.
func (u UserInfo) RatingOrDefault() int {
	if !u.Rated || u.Rating <= 0 {
		return DefaultRating
	}
	return u.Rating
}

// DefaultUserInfo is the fallback used when the provider cannot be reached.
func DefaultUserInfo(handle string) UserInfo {
	return UserInfo{Handle: handle, Rating: DefaultRating, Rank: unratedRank, MaxRank: unratedRank}
}

// LadderProblem is one problem from the ladder API.
type LadderProblem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating"`
	Tags      []string `json:"tags"`
	Points    float64  `json:"points"`
	Frequency int      `json:"frequency"`
}

// ProblemID is the contest id followed by the problem index, e.g. "1850A".
func (p LadderProblem) ProblemID() string {
	return fmt.Sprintf("%d%s", p.ContestID, p.Index)
}

// Link is the problemset URL of the problem.
func (p LadderProblem) Link() string {
	return fmt.Sprintf("https://codeforces.com/problemset/problem/%d/%s", p.ContestID, p.Index)
}

// Wire types. Optional fields are pointers so absence can be told apart
// from zero before defaults are applied.

type apiResponse[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  T      `json:"result"`
}

type rawUser struct {
	Handle     string  `json:"handle"`
	Rating     *int    `json:"rating"`
	MaxRating  *int    `json:"maxRating"`
	Rank       *string `json:"rank"`
	MaxRank    *string `json:"maxRank"`
	Avatar     *string `json:"avatar"`
	TitlePhoto *string `json:"titlePhoto"`
}

func (r rawUser) toUserInfo() UserInfo {
	info := UserInfo{Handle: r.Handle, Rank: unratedRank, MaxRank: unratedRank}
	if r.Rating != nil {
		info.Rated = true
		info.Rating = *r.Rating
	}
	if r.MaxRating != nil {
		info.MaxRating = *r.MaxRating
	}
	if r.Rank != nil && *r.Rank != "" {
		info.Rank = *r.Rank
	}
	if r.MaxRank != nil && *r.MaxRank != "" {
		info.MaxRank = *r.MaxRank
	}
	switch {
	case r.TitlePhoto != nil && *r.TitlePhoto != "":
		info.Avatar = *r.TitlePhoto
	case r.Avatar != nil:
		info.Avatar = *r.Avatar
	}
	return info
}

type rawSubmission struct {
	Verdict *string `json:"verdict"`
	Problem *struct {
		ContestID *int   `json:"contestId"`
		Index     string `json:"index"`
	} `json:"problem"`
}

type ladderResponse struct {
	Data []rawLadderProblem `json:"data"`
}

type rawLadderProblem struct {
	ContestID *int     `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    *int     `json:"rating"`
	Tags      []string `json:"tags"`
	Points    *float64 `json:"points"`
	Frequency *int     `json:"frequency"`
}

func (r rawLadderProblem) toProblem() (LadderProblem, bool) {
	if r.ContestID == nil || r.Index == "" {
		return LadderProblem{}, false
	}
	p := LadderProblem{ContestID: *r.ContestID, Index: r.Index, Name: r.Name, Tags: r.Tags}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
	if r.Points != nil {
		p.Points = *r.Points
	}
	if r.Frequency != nil {
		p.Frequency = *r.Frequency
	}
	return p, true
}
