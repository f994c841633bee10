// internal/game/state.go
package game

import "github.com/jason-s-yu/monopoly/internal/models"

func (g *Game) playerList() Response {
	return respond(RespPlayerList, g.joined)
}

func (g *Game) nextTurn() Response {
	if cur := g.curPlayer(); cur != nil {
		return respond(RespNextTurn, cur)
	}
	return respond(RespNextTurn, nil)
}

func (g *Game) lobbyState() models.LobbyState {
	names := make([]string, 0, len(g.joined))
	for _, p := range g.joined {
		names = append(names, p.Name)
	}
	ls := models.LobbyState{
		ID:      g.ID,
		Board:   g.board.Name,
		Started: g.Started,
		Over:    g.Over,
		Players: names,
		Rules:   g.Rules,
	}
	if p := g.players[g.host]; p != nil {
		ls.Host = p.ID.String()
	}
	return ls
}

// updatedState is the bundle broadcast after every state-changing action.
func (g *Game) updatedState() []Response {
	return []Response{
		g.nextTurn(),
		respond(RespBoard, g.board.Snapshot()),
		g.playerList(),
		respond(RespTradeList, g.trades),
		respond(RespLoanList, g.loans),
		respond(RespLobbyState, g.lobbyState()),
	}
}
