package reconcile

import "github.com/ZetoOfficial/follow-diff/internal/models"

// Reconcile делит фолловеров и друзей на взаимных, только фолловеров и только друзей.
// Имена сравниваются как точные строки. Mutual и FollowersOnly сохраняют порядок followers,
// FriendsOnly сохраняет порядок friends.
func Reconcile(followers, friends []string) *models.Result {
	friendSet := index(friends)
	followerSet := index(followers)

	result := &models.Result{
		Followers:     nonNil(followers),
		Friends:       nonNil(friends),
		Mutual:        []string{},
		FollowersOnly: []string{},
		FriendsOnly:   []string{},
	}
	for _, user := range followers {
		if _, ok := friendSet[user]; ok {
			result.Mutual = append(result.Mutual, user)
		} else {
			result.FollowersOnly = append(result.FollowersOnly, user)
		}
	}
	for _, user := range friends {
		if _, ok := followerSet[user]; !ok {
			result.FriendsOnly = append(result.FriendsOnly, user)
		}
	}
	return result
}

func index(users []string) map[string]struct{} {
	set := make(map[string]struct{}, len(users))
	for _, u := range users {
		set[u] = struct{}{}
	}
	return set
}

func nonNil(users []string) []string {
	if users == nil {
		return []string{}
	}
	return users
}
