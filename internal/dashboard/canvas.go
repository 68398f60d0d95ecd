package dashboard

import "github.com/starford/ncdash/internal/store"

// SetCanvasDimensions resizes the pipeline canvas.
func (s *Service) SetCanvasDimensions(width, height int) error {
	return s.store.Dispatch(store.SetCanvasDimensions{Width: width, Height: height})
}

// SetCanvasScale zooms the pipeline canvas.
func (s *Service) SetCanvasScale(scale float64) error {
	return s.store.Dispatch(store.SetCanvasScale{Scale: scale})
}

// SetCanvasDragging records whether a node is being dragged.
func (s *Service) SetCanvasDragging(dragging bool) {
	s.dispatch(store.SetCanvasDragging{Dragging: dragging})
}
