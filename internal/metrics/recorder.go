package metrics

// WriteResult labels the outcome of a snapshot write.
type WriteResult string

const (
	WriteSuccess WriteResult = "success"
	WriteFailed  WriteResult = "failed"
	WriteSkipped WriteResult = "skipped"
)

// Recorder receives checklist observability hooks. The manager always holds
// one; NoopRecorder is the default when metrics are not configured.
type Recorder interface {
	IncLoad(success bool)
	IncWrite(result WriteResult)
	SetPackedWeight(total float64)
	SetPackedItems(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncLoad(bool)            {}
func (NoopRecorder) IncWrite(WriteResult)    {}
func (NoopRecorder) SetPackedWeight(float64) {}
func (NoopRecorder) SetPackedItems(int)      {}
