package gateway

// Session keys are part of the contract with the gateway. The formats below
// must stay stable: changing them orphans every existing agent conversation.
// The gw-/lead-/mc- segments keep the three role classes collision-free.

const sessionSuffix = ":main"

// MainSessionKey is the session key for a gateway-main agent.
func MainSessionKey(gatewayID string) string {
	return "agent:gw-" + gatewayID + sessionSuffix
}

// BoardLeadSessionKey is the session key for a board lead agent.
func BoardLeadSessionKey(boardID string) string {
	return "agent:lead-" + boardID + sessionSuffix
}

// BoardAgentSessionKey is the session key for a non-lead, board-scoped agent.
func BoardAgentSessionKey(agentID string) string {
	return "agent:mc-" + agentID + sessionSuffix
}

// BoardSessionKey picks the lead or member key for a board-scoped agent.
func BoardSessionKey(agentID, boardID string, lead bool) string {
	if lead {
		return BoardLeadSessionKey(boardID)
	}
	return BoardAgentSessionKey(agentID)
}
