// internal/game/utils.go
package game

import (
	"encoding/json"
	"sort"

	"github.com/sirupsen/logrus"
)

// EncodeResponses marshals one response as an object and several as an array.
// On a marshalling error it logs and returns an error response instead.
func EncodeResponses(msgs ...Response) []byte {
	var v interface{} = msgs
	if len(msgs) == 1 {
		v = msgs[0]
	}
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Warn("failed to marshal response")
		return []byte(`{"response":"error","value":"internal error"}`)
	}
	return data
}

func sortByCreation(games []*Game) {
	sort.Slice(games, func(i, j int) bool {
		return games[i].createdAt.Before(games[j].createdAt)
	})
}
