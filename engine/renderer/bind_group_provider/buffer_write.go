package bind_group_provider

// BufferWrite describes a single GPU buffer write targeting a binding on a BindGroupProvider.
// The backend collects them while building a pass and flushes them before submitting.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
