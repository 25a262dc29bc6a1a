package constant

const (
	// ResetCommand clears the sender's conversation history for the active
	// provider; the next message starts a fresh session.
	ResetCommand = "/reset"

	// ResetAckReply is sent after a successful reset.
	ResetAckReply = "Conversation cleared. Let's start fresh!"

	// ResetFailedReply is sent when clearing the stored history failed.
	ResetFailedReply = "Sorry, I couldn't clear the conversation. Please try again."
)
