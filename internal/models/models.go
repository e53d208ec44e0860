package models

// User представляет пользователя из списка фолловеров или друзей.
type User struct {
	ScreenName      string `json:"screen_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Page представляет одну страницу ответа API со списком пользователей.
type Page struct {
	Users      []User `json:"users"`
	NextCursor int64  `json:"next_cursor"`
}

// PageParams параметры запроса страницы.
type PageParams struct {
	SkipStatus bool
	Count      int
	Cursor     int64
}

// Result представляет результат сверки фолловеров и друзей.
type Result struct {
	Followers     []string
	Friends       []string
	Mutual        []string
	FollowersOnly []string
	FriendsOnly   []string
}

// Counts возвращает размеры всех списков результата.
func (r *Result) Counts() map[string]int {
	return map[string]int{
		"followers":      len(r.Followers),
		"friends":        len(r.Friends),
		"mutual":         len(r.Mutual),
		"followers_only": len(r.FollowersOnly),
		"friends_only":   len(r.FriendsOnly),
	}
}

// Handles возвращает screen name пользователей в исходном порядке.
func Handles(users []User) []string {
	handles := make([]string, len(users))
	for i, u := range users {
		handles[i] = u.ScreenName
	}
	return handles
}
