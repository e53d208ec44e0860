package storage

import "sort"

const (
	mergeUserQuery = `
			MERGE (u:User {screen_name: $screen_name})
			`
	mergeFollowsQuery = `
			MERGE (from:User {screen_name: $from})
			MERGE (to:User {screen_name: $to})
			MERGE (from)-[:FOLLOWS]->(to)
			`
)

var neo4jQueries = map[string]string{
	// всего пользователей
	"total_users": `
			MATCH (u:User)
			RETURN COUNT(u) AS total_users
		`,
	// пары пользователей, подписанных друг на друга
	"mutual_followers": `
			MATCH (u1:User)-[:FOLLOWS]->(u2:User)
			MATCH (u2)-[:FOLLOWS]->(u1)
			WHERE u1.screen_name < u2.screen_name
			RETURN u1.screen_name AS user1, u2.screen_name AS user2
		`,
	// подписаны на пользователя, но без взаимной подписки
	"followers_only": `
			MATCH (f:User)-[:FOLLOWS]->(u:User)
			WHERE NOT (u)-[:FOLLOWS]->(f)
			RETURN u.screen_name AS user, f.screen_name AS follower
		`,
	// пользователь подписан, но без взаимной подписки
	"friends_only": `
			MATCH (u:User)-[:FOLLOWS]->(f:User)
			WHERE NOT (f)-[:FOLLOWS]->(u)
			RETURN u.screen_name AS user, f.screen_name AS friend
		`,
	// топ 5 пользователей по количеству фоллоуверов
	"top_followed": `
			MATCH (u:User)<-[:FOLLOWS]-(f:User)
			RETURN u.screen_name AS user, COUNT(f) AS followers_count
			ORDER BY followers_count DESC
			LIMIT 5
		`,
}

// QueryNames возвращает имена запросов, которые принимает RunQuery.
func QueryNames() []string {
	names := make([]string, 0, len(neo4jQueries))
	for name := range neo4jQueries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func IsKnownQuery(name string) bool {
	_, ok := neo4jQueries[name]
	return ok
}
