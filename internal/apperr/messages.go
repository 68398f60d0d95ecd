package apperr

// Fixed, user-facing messages stored in the owning slice when an action is
// rejected. One message per action type.
const (
	MsgFetchDataSets    = "Failed to fetch data sets"
	MsgFetchDatasetInfo = "Failed to fetch dataset info"
	MsgFetchLatLon      = "Failed to fetch lat lon"
	MsgGenerateImage    = "Failed to generate image"
	MsgGenerateTransect = "Failed to generate transect"
	MsgListSessions     = "Failed to list sessions"
	MsgCreateSession    = "Failed to create session"
)
