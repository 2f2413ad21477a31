package invoke

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/resolve"
	"github.com/wippyai/memview/view"
)

// Function is a callable entry point whose address comes from a resolver.
// The address is resolved on every call.
type Function struct {
	inv    Invoker
	res    resolve.Resolver
	parent view.View
	sig    Signature
}

// NewFunction declares a free function resolved against the global anchor.
// The convention must be supported by inv.
func NewFunction(inv Invoker, res resolve.Resolver, sig Signature) (*Function, error) {
	return NewFunctionIn(inv, view.Global(), res, sig)
}

// NewFunctionIn declares a free function resolved against anchor, for
// entry points recorded in a memory other than the native one.
func NewFunctionIn(inv Invoker, anchor view.View, res resolve.Resolver, sig Signature) (*Function, error) {
	if err := checkConvention(inv, sig.Convention); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.InvalidInput(errors.PhaseDeclare, "function has no resolver")
	}
	Logger().Debug("declared function",
		zap.String("resolver", describe(res)),
		zap.Stringer("signature", sig),
		zap.String("invoker", invokerName(inv)))
	return &Function{inv: inv, res: res, parent: anchor, sig: sig}, nil
}

// Signature returns the declared signature.
func (f *Function) Signature() Signature { return f.sig }

// Address resolves the current entry point.
func (f *Function) Address() (memview.Address, error) {
	return f.res.Resolve(f.parent.Memory(), f.parent.AddressOfObject())
}

// Call resolves the entry point and dispatches args.
func (f *Function) Call(ctx context.Context, args ...uint64) ([]uint64, error) {
	if len(args) != len(f.sig.Params) {
		return nil, errors.Arity(errors.PhaseInvoke, len(f.sig.Params), len(args))
	}
	addr, err := f.Address()
	if err != nil {
		return nil, err
	}
	return dispatch(ctx, f.inv, addr, f.sig, args)
}

// MemberFunction is a function that receives its parent's address as a
// leading pointer argument.
type MemberFunction struct {
	Function
	this Signature
}

// NewMemberFunction declares a member function of parent. sig lists the
// explicit parameters; the object pointer is prepended on every call.
func NewMemberFunction(inv Invoker, parent view.View, res resolve.Resolver, sig Signature) (*MemberFunction, error) {
	if err := checkConvention(inv, sig.Convention); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.InvalidInput(errors.PhaseDeclare, "member function has no resolver")
	}
	return &MemberFunction{
		Function: Function{inv: inv, res: res, parent: parent, sig: sig},
		this:     sig.withThis(),
	}, nil
}

// NewVirtualFunction declares a member function found in slot index of
// the table pointed to at tableOffset inside parent.
func NewVirtualFunction(inv Invoker, parent view.View, index, tableOffset uint64, sig Signature) (*MemberFunction, error) {
	return NewMemberFunction(inv, parent, resolve.VTableSlot{Index: index, TableOffset: tableOffset}, sig)
}

// Parent returns the object the function is bound to.
func (m *MemberFunction) Parent() view.View { return m.parent }

// Call dispatches with the parent's address prepended.
func (m *MemberFunction) Call(ctx context.Context, args ...uint64) ([]uint64, error) {
	if len(args) != len(m.sig.Params) {
		return nil, errors.Arity(errors.PhaseInvoke, len(m.sig.Params), len(args))
	}
	addr, err := m.Address()
	if err != nil {
		return nil, err
	}
	full := make([]uint64, 0, len(args)+1)
	full = append(full, uint64(m.parent.AddressOfObject()))
	full = append(full, args...)
	return dispatch(ctx, m.inv, addr, m.this, full)
}

func dispatch(ctx context.Context, inv Invoker, addr memview.Address, sig Signature, args []uint64) ([]uint64, error) {
	results, err := inv.Invoke(ctx, addr, sig, args)
	if err != nil {
		return nil, err
	}
	if len(results) != len(sig.Results) {
		return nil, errors.New(errors.PhaseInvoke, errors.KindArity).
			Value(addr).
			Detail("expected %d results, got %d", len(sig.Results), len(results)).
			Build()
	}
	return results, nil
}

func describe(res resolve.Resolver) string {
	if s, ok := res.(interface{ String() string }); ok {
		return s.String()
	}
	return "func"
}
