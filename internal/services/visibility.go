package services

import "github.com/Dias221467/cf_social/internal/models"

// CanView reports whether viewer may see subject's detailed profile. An
// empty viewer is anonymous. subject.Follower must be populated.
func CanView(viewer string, subject *models.User) bool {
	if subject == nil {
		return false
	}
	if viewer != "" && viewer == subject.Username {
		return true
	}
	if !subject.IsPrivate {
		return true
	}
	if viewer == "" {
		return false
	}
	for _, f := range subject.Follower {
		if f == viewer {
			return true
		}
	}
	return false
}
