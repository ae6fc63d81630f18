package runtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/b33j0r/komrad-lang-golden-boy/internal/ast"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/log"
	"github.com/b33j0r/komrad-lang-golden-boy/internal/object"
)

// Evaluator is the slice of the interpreter the runtime needs: running a
// handler body and deciding a predicate. The evaluator package implements
// it; keeping it an interface here breaks the import cycle between the two.
type Evaluator interface {
	// RunBlock evaluates the statements of a block in env and returns the
	// value of the last one, or an *object.Error.
	RunBlock(block *ast.Block, env *object.Environment) object.Object

	// EvalExpression evaluates a single expression in env.
	EvalExpression(expr ast.Expression, env *object.Environment) object.Object
}

// System owns the agent definition registry and every running instance.
type System struct {
	mu        sync.RWMutex
	defs      map[string]*ast.AgentDecl
	instances map[string]*Instance
	base      *object.Environment
	ev        Evaluator
}

func NewSystem() *System {
	return &System{
		defs:      make(map[string]*ast.AgentDecl),
		instances: make(map[string]*Instance),
		base:      object.NewEnvironment(),
	}
}

// SetEvaluator wires the interpreter in. Must be called before any Spawn.
func (s *System) SetEvaluator(ev Evaluator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ev = ev
}

// BaseEnv is the root environment; system agents and module-level agent
// references are defined here.
func (s *System) BaseEnv() *object.Environment {
	return s.base
}

// Register makes an agent definition spawnable. Redefinition replaces the
// previous definition; instances already spawned from it are unaffected.
func (s *System) Register(decl *ast.AgentDecl) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.defs[decl.Name.Value]; ok {
		log.Warn("SYS: redefining agent %s", decl.Name.Value)
	}
	s.defs[decl.Name.Value] = decl
}

func (s *System) Definition(name string) (*ast.AgentDecl, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	decl, ok := s.defs[name]
	return decl, ok
}

// Spawn creates a running instance of a registered definition. The
// definition body runs in a fresh instance scope rooted at the base
// environment; overrides are applied after field defaults.
func (s *System) Spawn(name string, overrides map[string]object.Object) (*object.AgentRef, error) {
	s.mu.RLock()
	decl, ok := s.defs[name]
	ev := s.ev
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no agent definition named %q", name)
	}
	if ev == nil {
		return nil, fmt.Errorf("system has no evaluator")
	}

	inst := newInstance(s, name, object.NewInstanceEnvironment(s.base))
	if err := inst.init(decl.Body, overrides); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.instances[inst.ID] = inst
	s.mu.Unlock()

	inst.start()
	log.Debug("SYS: spawned %s as %s", name, inst.ID[:8])
	return inst.Ref(), nil
}

// SpawnModule runs a whole program as an anonymous agent instance: its
// top-level agent declarations are registered, everything else becomes
// the instance body. This is how a source file becomes the root agent.
func (s *System) SpawnModule(name string, program *ast.Program) (*Instance, error) {
	s.mu.RLock()
	ev := s.ev
	s.mu.RUnlock()
	if ev == nil {
		return nil, fmt.Errorf("system has no evaluator")
	}

	body := &ast.Block{}
	for _, stmt := range program.Statements {
		if decl, ok := stmt.(*ast.AgentDecl); ok {
			s.Register(decl)
			continue
		}
		body.Statements = append(body.Statements, stmt)
	}

	inst := newInstance(s, name, object.NewInstanceEnvironment(s.base))
	if err := inst.init(body, nil); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.instances[inst.ID] = inst
	s.mu.Unlock()

	inst.start()
	log.Debug("SYS: module %s running as %s", name, inst.ID[:8])
	return inst, nil
}

// InstallIntrinsic registers a pre-built instance (a system agent) under a
// base-environment name. The instance's dispatch is native Go rather than
// pattern handlers.
func (s *System) InstallIntrinsic(name string, inst *Instance) *object.AgentRef {
	s.mu.Lock()
	s.instances[inst.ID] = inst
	s.mu.Unlock()
	inst.start()
	ref := inst.Ref()
	s.base.Define(name, ref)
	return ref
}

func (s *System) remove(id string) {
	s.mu.Lock()
	delete(s.instances, id)
	s.mu.Unlock()
}

// InstanceCount reports how many instances are still running.
func (s *System) InstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}

// Idle reports whether every running instance has an empty mailbox and is
// not mid-dispatch. Used to decide when a program has quiesced.
func (s *System) Idle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inst := range s.instances {
		if !inst.idle() {
			return false
		}
	}
	return true
}

// WaitIdle blocks until the system quiesces or the timeout elapses.
func (s *System) WaitIdle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if s.Idle() {
			// settle: a dispatch may have just posted new work
			time.Sleep(2 * time.Millisecond)
			if s.Idle() {
				return true
			}
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

// Shutdown stops every instance and waits for their loops to exit.
func (s *System) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	running := make([]*Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		running = append(running, inst)
	}
	s.mu.RUnlock()

	for _, inst := range running {
		inst.stop()
	}

	deadline := time.After(timeout)
	for _, inst := range running {
		select {
		case <-inst.done:
		case <-deadline:
			log.Warn("SYS: shutdown timed out waiting for %s", inst.ID[:8])
			return
		}
	}
}
