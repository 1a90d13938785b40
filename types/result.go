package types

// BroadcastResult is the normalized outcome of a submission, whichever
// backend produced it.
type BroadcastResult struct {
	TransactionID string `json:"transaction_id"`
	BlockNumber   uint32 `json:"block_number"`
	OperationID   string `json:"operation_id"`
}

// ActivityCode identifies a tracked intent in the telemetry backend.
type ActivityCode int

const (
	ActivityPost   ActivityCode = 100
	ActivityReply  ActivityCode = 110
	ActivityVote   ActivityCode = 120
	ActivityFollow ActivityCode = 130
)

type ActivityRecord struct {
	Username    string       `json:"us"`
	TypeCode    ActivityCode `json:"ty"`
	BlockNumber uint32       `json:"bl"`
	OperationID string       `json:"tx"`
}

func NewActivityRecord(username string, code ActivityCode, result *BroadcastResult) *ActivityRecord {
	return &ActivityRecord{
		Username:    username,
		TypeCode:    code,
		BlockNumber: result.BlockNumber,
		OperationID: result.OperationID,
	}
}
