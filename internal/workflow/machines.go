package workflow

import (
	"context"

	"github.com/im-adarsh/go-statemachine/statemachine"
)

// Workflow events.
const (
	EventAprobar   statemachine.Event = "aprobar"
	EventRechazar  statemachine.Event = "rechazar"
	EventObservar  statemachine.Event = "observar"
	EventRegistrar statemachine.Event = "registrar"
	EventReabrir   statemachine.Event = "reabrir"

	EventApprove  statemachine.Event = "approve"
	EventReject   statemachine.Event = "reject"
	EventJustify  statemachine.Event = "justify"
	EventComplete statemachine.Event = "complete"

	EventDeliver statemachine.Event = "deliver"
	EventExpire  statemachine.Event = "expire"
	EventRestore statemachine.Event = "restore"
)

var (
	authorizationMachine = newAuthorizationMachine()
	voucherMachine       = newVoucherMachine()
	trackingMachine      = newTrackingMachine()
)

// stateHolder adapts a plain state value to statemachine.TransitionModel.
type stateHolder struct {
	state statemachine.State
}

func (h *stateHolder) SetState(s statemachine.State) { h.state = s }
func (h *stateHolder) GetState() statemachine.State  { return h.state }

// machineEvent adapts an event name to statemachine.TransitionEvent.
type machineEvent statemachine.Event

func (e machineEvent) GetEvent() statemachine.Event { return statemachine.Event(e) }

func noopTransition(ctx context.Context, e statemachine.TransitionEvent, m statemachine.TransitionModel) (statemachine.TransitionModel, error) {
	return m, nil
}

func newAuthorizationMachine() statemachine.StateMachine {
	sm := statemachine.NewStatemachine(statemachine.EventKey{
		Src:   statemachine.State(EstadoPendienteJefe),
		Event: EventAprobar,
	})
	_ = sm.AddTransitions(
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(EstadoPendienteJefe)},
			Event:      EventAprobar,
			Dst:        statemachine.State(EstadoPendienteRegistro),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(EstadoPendienteJefe)},
			Event:      EventRechazar,
			Dst:        statemachine.State(EstadoRechazado),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(EstadoPendienteJefe)},
			Event:      EventObservar,
			Dst:        statemachine.State(EstadoObservada),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(EstadoPendienteRegistro)},
			Event:      EventRegistrar,
			Dst:        statemachine.State(EstadoRegistrado),
			Transition: noopTransition,
		},
		// A corrected boleta re-enters the jefe queue on the same record.
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(EstadoObservada)},
			Event:      EventReabrir,
			Dst:        statemachine.State(EstadoPendienteJefe),
			Transition: noopTransition,
		},
	)
	return sm
}

func newVoucherMachine() statemachine.StateMachine {
	sm := statemachine.NewStatemachine(statemachine.EventKey{
		Src:   statemachine.State(VoucherPending),
		Event: EventApprove,
	})
	_ = sm.AddTransitions(
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(VoucherPending)},
			Event:      EventApprove,
			Dst:        statemachine.State(VoucherApproved),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(VoucherPending)},
			Event:      EventReject,
			Dst:        statemachine.State(VoucherRejected),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(VoucherApproved), statemachine.State(VoucherOverdue)},
			Event:      EventJustify,
			Dst:        statemachine.State(VoucherJustified),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(VoucherApproved)},
			Event:      EventExpire,
			Dst:        statemachine.State(VoucherOverdue),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(VoucherJustified)},
			Event:      EventComplete,
			Dst:        statemachine.State(VoucherCompleted),
			Transition: noopTransition,
		},
	)
	return sm
}

func newTrackingMachine() statemachine.StateMachine {
	sm := statemachine.NewStatemachine(statemachine.EventKey{
		Src:   statemachine.State(TrackingPendingDelivery),
		Event: EventDeliver,
	})
	_ = sm.AddTransitions(
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(TrackingPendingDelivery)},
			Event:      EventDeliver,
			Dst:        statemachine.State(TrackingDelivered),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(TrackingDelivered)},
			Event:      EventJustify,
			Dst:        statemachine.State(TrackingJustified),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(TrackingDelivered)},
			Event:      EventExpire,
			Dst:        statemachine.State(TrackingOverdue),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(TrackingOverdue)},
			Event:      EventRestore,
			Dst:        statemachine.State(TrackingDelivered),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(TrackingOverdue)},
			Event:      EventJustify,
			Dst:        statemachine.State(TrackingJustified),
			Transition: noopTransition,
		},
		statemachine.Transition{
			Src:        []statemachine.State{statemachine.State(TrackingJustified)},
			Event:      EventComplete,
			Dst:        statemachine.State(TrackingCompleted),
			Transition: noopTransition,
		},
	)
	return sm
}

// fire runs event against machine from the given state, returning the resulting
// state or a TransitionError when the event is undefined there.
func fire(machine statemachine.StateMachine, entity string, from statemachine.State, event statemachine.Event) (statemachine.State, error) {
	holder := &stateHolder{state: from}
	if _, err := machine.TriggerTransition(context.Background(), machineEvent(event), holder); err != nil {
		return from, &TransitionError{Entity: entity, From: string(from), Event: string(event)}
	}
	return holder.state, nil
}
