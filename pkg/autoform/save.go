package autoform

import "go.uber.org/zap"

// SaveForm validates the whole tree and publishes SaveRequested with the
// current value when every required field is filled and every rule passes.
// Only a rendered root saves.
func (n *Node) SaveForm() bool {
	if n.level != 0 || n.state != StateRendered || n.validator == nil {
		n.logger().Debug("save ignored",
			zap.String("id", n.id),
			zap.Int("level", n.level),
			zap.Stringer("state", n.state),
		)
		return false
	}
	data := n.GetFormData()
	filled := n.validator.NoEmptyFields()
	valid := n.validator.ValidateFields()
	if !filled || !valid {
		n.logger().Debug("save rejected",
			zap.String("id", n.id),
			zap.Bool("filled", filled),
			zap.Bool("valid", valid),
		)
		return false
	}
	n.rt.bus.Publish(SaveRequested{ID: n.id, Data: data})
	n.rt.queue.drain()
	return true
}
