package runtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/ast"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/log"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

// Handler is one `[pattern] { body }` arm of an agent definition.
type Handler struct {
	Pattern *ast.Pattern
	Body    *ast.Block
}

// NativeDispatch is the dispatch function of an intrinsic system agent.
type NativeDispatch func(msg object.Message) object.Object

// Instance is one running agent: an instance scope, an ordered handler
// list, and a mailbox drained by a single goroutine, so dispatch within
// an instance is strictly sequential while instances run in parallel.
type Instance struct {
	ID   string
	Name string

	sys      *System
	Env      *object.Environment
	handlers []Handler
	native   NativeDispatch
	initBody *ast.Block

	in   chan object.Message
	work chan object.Message
	quit chan struct{}
	done chan struct{}

	mu      sync.Mutex
	stopped bool
	pending int
}

func newInstance(sys *System, name string, env *object.Environment) *Instance {
	return &Instance{
		ID:   uuid.NewString(),
		Name: name,
		sys:  sys,
		Env:  env,
		in:   make(chan object.Message, 1),
		work: make(chan object.Message),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// NewIntrinsic builds an instance whose dispatch is native Go. Used for
// system agents like io and fs.
func NewIntrinsic(sys *System, name string, dispatch NativeDispatch) *Instance {
	inst := newInstance(sys, name, object.NewInstanceEnvironment(sys.BaseEnv()))
	inst.native = dispatch
	return inst
}

// init scans the definition body: handlers are collected, overrides are
// bound first, and everything else becomes the init block that runs when
// the instance starts. Field statements stay in the init block so their
// type annotation is checked against an override too.
func (in *Instance) init(body *ast.Block, overrides map[string]object.Object) error {
	for name, val := range overrides {
		in.Env.Define(name, val)
	}
	in.Env.Define("self", in.Ref())

	in.initBody = &ast.Block{}
	for _, stmt := range body.Statements {
		switch stmt := stmt.(type) {
		case *ast.HandlerStatement:
			in.handlers = append(in.handlers, Handler{Pattern: stmt.Pattern, Body: stmt.Body})
		default:
			in.initBody.Statements = append(in.initBody.Statements, stmt)
		}
	}

	if len(in.initBody.Statements) > 0 {
		in.pending = 1
	}
	return nil
}

// Understands reports whether any handler could receive a message with
// the given selector and arity.
func (in *Instance) Understands(selector string, arity int) bool {
	for _, h := range in.handlers {
		if h.Pattern.Arity() != arity {
			continue
		}
		if len(h.Pattern.Terms) == 0 {
			return true
		}
		switch term := h.Pattern.Terms[0].(type) {
		case *ast.WordTerm:
			if term.Value == selector {
				return true
			}
		default:
			return true
		}
	}
	return false
}

// Ref returns the sendable handle for this instance.
func (in *Instance) Ref() *object.AgentRef {
	return &object.AgentRef{ID: in.ID, Name: in.Name, Queue: in}
}

// Post enqueues a message. It fails with a DeliveryError once the
// instance has terminated; the mailbox itself is unbounded.
func (in *Instance) Post(msg object.Message) error {
	in.mu.Lock()
	if in.stopped {
		in.mu.Unlock()
		return &DeliveryError{Agent: in.Name, ID: in.ID}
	}
	in.pending++
	in.mu.Unlock()

	select {
	case in.in <- msg:
		return nil
	case <-in.quit:
		in.mu.Lock()
		in.pending--
		in.mu.Unlock()
		return &DeliveryError{Agent: in.Name, ID: in.ID}
	}
}

func (in *Instance) start() {
	go in.pump()
	go in.run()
}

// stop requests termination without draining the queue.
func (in *Instance) stop() {
	in.mu.Lock()
	if in.stopped {
		in.mu.Unlock()
		return
	}
	in.stopped = true
	in.mu.Unlock()
	close(in.quit)
}

func (in *Instance) idle() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pending == 0
}

func (in *Instance) settle() {
	in.mu.Lock()
	in.pending--
	in.mu.Unlock()
}

// pump shuttles messages from the intake channel into an internal queue
// and feeds the dispatch loop one at a time, keeping Post non-blocking.
func (in *Instance) pump() {
	var queue []object.Message
	for {
		if len(queue) == 0 {
			select {
			case msg := <-in.in:
				queue = append(queue, msg)
			case <-in.quit:
				return
			}
		} else {
			select {
			case msg := <-in.in:
				queue = append(queue, msg)
			case in.work <- queue[0]:
				queue = queue[1:]
			case <-in.quit:
				return
			}
		}
	}
}

// run is the dispatch loop: the init block first, then one message at a
// time until termination.
func (in *Instance) run() {
	defer func() {
		in.sys.remove(in.ID)
		close(in.done)
		log.Debug("AGT: %s (%s) exited", in.Name, in.ID[:8])
	}()

	if in.initBody != nil && len(in.initBody.Statements) > 0 {
		result := in.sys.ev.RunBlock(in.initBody, in.Env)
		if err, ok := result.(*object.Error); ok {
			log.Error("AGT: %s init failed: %s", in.Name, err.Message)
		}
		in.settle()
	}

	for {
		select {
		case msg := <-in.work:
			alive := in.dispatch(msg)
			in.settle()
			if !alive {
				in.stop()
				return
			}
		case <-in.quit:
			return
		}
	}
}

// dispatch matches a message against the handlers in definition order and
// runs the first match. Returns false when the instance should terminate.
func (in *Instance) dispatch(msg object.Message) bool {
	if in.native != nil {
		result := in.native(msg)
		in.reply(msg, result)
		_, isTerm := result.(*terminated)
		return !isTerm
	}

	for _, h := range in.handlers {
		bindings, ok := in.match(h.Pattern, msg.Terms)
		if !ok {
			continue
		}
		env := object.NewEnclosedEnvironment(in.Env)
		if msg.ReplyTo != nil {
			env.Define("reply", msg.ReplyTo)
		}
		for name, val := range bindings {
			env.Define(name, val)
		}
		result := in.sys.ev.RunBlock(h.Body, env)
		if err, ok := result.(*object.Error); ok {
			log.Error("AGT: %s handler %s failed: %s", in.Name, h.Pattern.String(), err.Message)
		}
		in.reply(msg, result)
		return true
	}

	if msg.Selector() == "terminate" {
		in.reply(msg, object.NIL)
		return false
	}

	log.Warn("AGT: %s dropped unhandled message %s", in.Name, msg.String())
	in.reply(msg, &object.Error{Message: "no matching handler for " + msg.String()})
	return true
}

// terminated is the sentinel a native dispatch returns to stop its loop.
type terminated struct{ object.Nil }

// Terminated is returned by native dispatchers to end their instance.
func Terminated() object.Object { return &terminated{} }

func (in *Instance) reply(msg object.Message, value object.Object) {
	if msg.ReplyTo == nil {
		return
	}
	if value == nil {
		value = object.NIL
	}
	if err := msg.ReplyTo.Queue.Post(object.Message{Terms: []object.Object{value}}); err != nil {
		log.Debug("AGT: %s reply to %s undeliverable", in.Name, msg.ReplyTo.Name)
	}
}
