package scheme

import "github.com/poiesic/agrivoice/core"

// QueryMonitor receives callbacks at each stage of a query.
type QueryMonitor interface {
	Start(question string)
	// AfterTranslation reports the text that will be embedded. err is the
	// translation failure, if any, in which case text is the original question.
	AfterTranslation(text string, err error)
	AfterEmbedding(vector []float32)
	Finish(match *core.Match)
}

type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) AfterTranslation(_ string, _ error) {}
func (n *noopMonitor) AfterEmbedding(_ []float32)         {}
func (n *noopMonitor) Finish(_ *core.Match)               {}
