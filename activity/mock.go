package activity

import "github.com/esteemapp/surfer-core/types"

type MockRecorder struct {
	RecordFunc func(record *types.ActivityRecord)
}

func (m *MockRecorder) Record(record *types.ActivityRecord) {
	if m.RecordFunc != nil {
		m.RecordFunc(record)
	}
}
