package screen

import "github.com/tormodhaugland/lastimport/internal/model"

// Anchor locates the row that opened the detail popover.
type Anchor struct {
	Page int
	Row  int
}

type detail struct {
	anchor Anchor
	stock  model.Stock
}

// DetailSelection is the stock shown in the indicator popover. At most one
// is active; opening another replaces it.
type DetailSelection struct {
	active *detail
}

func NewDetailSelection() *DetailSelection {
	return &DetailSelection{}
}

func (s *DetailSelection) Open(anchor Anchor, stock model.Stock) {
	s.active = &detail{anchor: anchor, stock: stock}
}

// Close is a no-op when nothing is open.
func (s *DetailSelection) Close() {
	s.active = nil
}

func (s *DetailSelection) IsOpen() bool { return s.active != nil }

func (s *DetailSelection) Stock() (model.Stock, bool) {
	if s.active == nil {
		return model.Stock{}, false
	}
	return s.active.stock, true
}

func (s *DetailSelection) Anchor() (Anchor, bool) {
	if s.active == nil {
		return Anchor{}, false
	}
	return s.active.anchor, true
}

// IndicatorsForDisplay lists the selected stock's indicators in wire order,
// without the storage identifier.
func (s *DetailSelection) IndicatorsForDisplay() model.Indicators {
	if s.active == nil {
		return model.Indicators{}
	}
	return s.active.stock.IndicatorsValues.Without(model.ReservedIndicatorKey)
}
