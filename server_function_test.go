package willitserver_test

import (
	"context"
	"errors"
	"mime/multipart"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"willitserver"
	"willitserver/internal/errs"
	"willitserver/mocks"
)

const (
	argsMsg   = "arguments may not be serializable"
	returnMsg = "return value may not be serializable"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.ErrorLevel)
	return zap.New(core), logs
}

func TestWrap(t *testing.T) {
	mockErr := errors.New("mock error")
	testCases := []struct {
		name string

		// do wraps a function with opts and calls it
		do         func(t *testing.T, opts ...willitserver.FuncOption) (any, error)
		wantResp   any
		wantErr    error
		wantArgs   int
		wantReturn int
	}{
		{
			name: "plain value",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func() string { return "Hello, World!" }, opts...)
				require.NoError(t, err)
				return fn(), nil
			},
			wantResp: "Hello, World!",
		},
		{
			name: "deferred value",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func() *willitserver.Deferred {
					return willitserver.Resolved("Hello, World!")
				}, opts...)
				require.NoError(t, err)
				return fn().Await(context.Background())
			},
			wantResp: "Hello, World!",
		},
		{
			name: "safe both ways",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func(ctx context.Context, todos []map[string]any) (int, error) {
					return len(todos), nil
				}, opts...)
				require.NoError(t, err)
				return fn(context.Background(), []map[string]any{{"text": "a"}, {"text": "b"}})
			},
			wantResp: 2,
		},
		{
			name: "unsafe arguments",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func(ctx context.Context, ch chan int) (string, error) {
					return "ok", nil
				}, opts...)
				require.NoError(t, err)
				return fn(context.Background(), make(chan int))
			},
			wantResp: "ok",
			wantArgs: 1,
		},
		{
			name: "unsafe return value",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func(id int) (any, error) {
					return errors.New("not a value"), nil
				}, opts...)
				require.NoError(t, err)
				return fn(1)
			},
			wantResp:   errors.New("not a value"),
			wantReturn: 1,
		},
		{
			name: "unsafe both ways",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func(a *willitserver.Atom) *willitserver.Atom {
					return a
				}, opts...)
				require.NoError(t, err)
				return fn(willitserver.NewAtom("local")).String(), nil
			},
			wantResp:   "Atom(local)",
			wantArgs:   1,
			wantReturn: 1,
		},
		{
			name: "returned error skips return check",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func(ch chan int) (func(), error) {
					return func() {}, mockErr
				}, opts...)
				require.NoError(t, err)
				_, err = fn(make(chan int))
				return nil, err
			},
			wantErr:  mockErr,
			wantArgs: 1,
		},
		{
			name: "form data among the arguments",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func(form *multipart.Form) int {
					return len(form.Value)
				}, opts...)
				require.NoError(t, err)
				return fn(&multipart.Form{Value: map[string][]string{"todo-input": {"a"}}}), nil
			},
			wantResp: 1,
			wantArgs: 1,
		},
		{
			name: "variadic arguments",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func(prefix string, atoms ...*willitserver.Atom) int {
					return len(atoms)
				}, opts...)
				require.NoError(t, err)
				return fn("x", willitserver.AtomFor("a"), willitserver.NewAtom("b")), nil
			},
			wantResp: 2,
			wantArgs: 1,
		},
		{
			name: "variadic registered atoms",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func(atoms ...*willitserver.Atom) int {
					return len(atoms)
				}, opts...)
				require.NoError(t, err)
				return fn(willitserver.AtomFor("a"), willitserver.AtomFor("b")), nil
			},
			wantResp: 2,
		},
		{
			name: "several results",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func() (int, chan int) {
					return 1, nil
				}, opts...)
				require.NoError(t, err)
				n, _ := fn()
				return n, nil
			},
			wantResp: 1,
		},
		{
			name: "several results with unsafe member",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func() (int, chan int, error) {
					return 1, make(chan int), nil
				}, opts...)
				require.NoError(t, err)
				n, _, err := fn()
				return n, err
			},
			wantResp:   1,
			wantReturn: 1,
		},
		{
			name: "deferred unsafe value",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func() willitserver.Future {
					return willitserver.Resolved([]any{1, func() {}})
				}, opts...)
				require.NoError(t, err)
				val, err := fn().Await(context.Background())
				return len(val.([]any)), err
			},
			wantResp:   2,
			wantReturn: 1,
		},
		{
			name: "deferred failure reaches the caller",
			do: func(t *testing.T, opts ...willitserver.FuncOption) (any, error) {
				fn, err := willitserver.Wrap(func() *willitserver.Deferred {
					return willitserver.Rejected(mockErr)
				}, opts...)
				require.NoError(t, err)
				return fn().Await(context.Background())
			},
			wantErr: mockErr,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, logs := newObservedLogger()
			resp, err := tc.do(t, willitserver.WithLogger(logger))
			assert.Equal(t, tc.wantErr, err)
			assert.Equal(t, tc.wantResp, resp)
			assert.Equal(t, tc.wantArgs, logs.FilterMessage(argsMsg).Len())
			assert.Equal(t, tc.wantReturn, logs.FilterMessage(returnMsg).Len())

			// checks disabled never log
			logger, logs = newObservedLogger()
			resp, err = tc.do(t, willitserver.WithLogger(logger), willitserver.WithChecksEnabled(false))
			assert.Equal(t, tc.wantErr, err)
			assert.Equal(t, tc.wantResp, resp)
			assert.Equal(t, 0, logs.Len())
		})
	}
}

func TestWrap_IdentityWithFunction(t *testing.T) {
	logger, logs := newObservedLogger()
	identity, err := willitserver.Wrap(func(x any) any { return x }, willitserver.WithLogger(logger), willitserver.WithName("identity"))
	require.NoError(t, err)

	arg := func() {}
	res := identity(arg)
	assert.Equal(t, reflect.ValueOf(arg).Pointer(), reflect.ValueOf(res).Pointer())

	argLogs := logs.FilterMessage(argsMsg).All()
	require.Len(t, argLogs, 1)
	fields := argLogs[0].ContextMap()
	assert.Equal(t, "identity", fields["function"])
	assert.Equal(t, "client-to-server", fields["direction"])
	assert.NotEmpty(t, fields["call_id"])

	retLogs := logs.FilterMessage(returnMsg).All()
	require.Len(t, retLogs, 1)
	assert.Equal(t, "server-to-client", retLogs[0].ContextMap()["direction"])
	assert.Equal(t, fields["call_id"], retLogs[0].ContextMap()["call_id"])
}

func TestWrap_InvalidFunc(t *testing.T) {
	var nilFunc func()
	_, err := willitserver.Wrap(nilFunc)
	assert.Equal(t, errs.NilFuncError, err)

	_, err = willitserver.Wrap[any](nil)
	assert.Equal(t, errs.NilFuncError, err)

	_, err = willitserver.Wrap[any](123)
	assert.ErrorIs(t, err, errs.FuncTypError)
}

func TestWrap_DefaultName(t *testing.T) {
	logger, logs := newObservedLogger()
	fn, err := willitserver.Wrap(func(ch chan int) {}, willitserver.WithLogger(logger), willitserver.WithNamePrefix("todo/"))
	require.NoError(t, err)
	fn(nil)
	fn(make(chan int))

	all := logs.FilterMessage(argsMsg).All()
	require.Len(t, all, 1)
	name, _ := all[0].ContextMap()["function"].(string)
	assert.Contains(t, name, "todo/")
	assert.Contains(t, name, "TestWrap_DefaultName")
}

func TestWrap_MockLogger(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(argsMsg, gomock.Any()).Times(1)
	logger.EXPECT().Error(returnMsg, gomock.Any()).Times(1)

	fn, err := willitserver.Wrap(func(ctx context.Context, ch chan struct{}) (chan struct{}, error) {
		return ch, nil
	}, willitserver.WithLogger(logger))
	require.NoError(t, err)
	ch := make(chan struct{})
	res, err := fn(context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, ch, res)
}

func TestWrap_Observers(t *testing.T) {
	ctrl := gomock.NewController(t)
	obs := mocks.NewMockObserver(ctrl)
	ctx := context.WithValue(context.Background(), struct{}{}, "call")
	gomock.InOrder(
		obs.EXPECT().Observe(ctx, "GetById", willitserver.ClientToServer, true),
		obs.EXPECT().Observe(ctx, "GetById", willitserver.ServerToClient, false),
	)
	logger, logs := newObservedLogger()

	fn, err := willitserver.Wrap(func(ctx context.Context, id int) (any, error) {
		return errors.New("class instance"), nil
	}, willitserver.WithLogger(logger), willitserver.WithName("GetById"), willitserver.WithObserver(obs))
	require.NoError(t, err)
	_, err = fn(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
}

func TestWrap_Concurrent(t *testing.T) {
	logger, logs := newObservedLogger()
	fn, err := willitserver.Wrap(func(ctx context.Context, ch chan int) (int, error) {
		return 1, nil
	}, willitserver.WithLogger(logger))
	require.NoError(t, err)

	const n = 50
	var eg errgroup.Group
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			_, err := fn(context.Background(), make(chan int))
			return err
		})
	}
	require.NoError(t, eg.Wait())

	all := logs.FilterMessage(argsMsg).All()
	require.Len(t, all, n)
	ids := make(map[any]struct{}, n)
	for _, entry := range all {
		ids[entry.ContextMap()["call_id"]] = struct{}{}
	}
	assert.Len(t, ids, n)
}

type UserService struct {
	GetById func(ctx context.Context, req *GetByIdReq) (*GetByIdResp, error)
	Leak    func() chan int
	Nil     func()
	hidden  func() chan int
	Name    string
}

type GetByIdReq struct {
	Id int
}

type GetByIdResp struct {
	Msg string
}

func TestGuard(t *testing.T) {
	testCases := []struct {
		name    string
		service any
		wantErr error
	}{
		{
			name:    "nil",
			service: nil,
			wantErr: errs.ServiceTypError,
		},
		{
			name:    "no pointer",
			service: UserService{},
			wantErr: errs.ServiceTypError,
		},
		{
			name:    "pointer to non struct",
			service: new(int),
			wantErr: errs.ServiceTypError,
		},
		{
			name:    "nil pointer",
			service: (*UserService)(nil),
			wantErr: errs.ServiceTypError,
		},
		{
			name:    "user service",
			service: &UserService{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := willitserver.Guard(tc.service)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestGuard_UserService(t *testing.T) {
	logger, logs := newObservedLogger()
	hiddenCh := make(chan int)
	srv := &UserService{
		GetById: func(ctx context.Context, req *GetByIdReq) (*GetByIdResp, error) {
			return &GetByIdResp{Msg: "user " + strconv.Itoa(req.Id)}, nil
		},
		Leak: func() chan int {
			return make(chan int)
		},
		hidden: func() chan int {
			return hiddenCh
		},
	}
	require.NoError(t, willitserver.Guard(srv, willitserver.WithLogger(logger)))
	assert.Nil(t, srv.Nil)

	resp, err := srv.GetById(context.Background(), &GetByIdReq{Id: 123})
	require.NoError(t, err)
	assert.Equal(t, &GetByIdResp{Msg: "user 123"}, resp)
	assert.Equal(t, 0, logs.Len())

	assert.NotNil(t, srv.Leak())
	all := logs.FilterMessage(returnMsg).All()
	require.Len(t, all, 1)
	assert.Equal(t, "UserService.Leak", all[0].ContextMap()["function"])

	assert.Equal(t, hiddenCh, srv.hidden())
	assert.Equal(t, 1, logs.Len())
}

func TestWrap_RenderableNode(t *testing.T) {
	ctrl := gomock.NewController(t)
	node := mocks.NewMockNode(ctrl)
	logger, logs := newObservedLogger()

	render, err := willitserver.Wrap(func(ctx context.Context) (willitserver.Node, error) {
		return node, nil
	}, willitserver.WithLogger(logger))
	require.NoError(t, err)
	res, err := render(context.Background())
	require.NoError(t, err)
	assert.Same(t, node, res)
	assert.Equal(t, 0, logs.Len())

	// a node is only allowed on the way back to the client
	accept, err := willitserver.Wrap(func(n willitserver.Node) {}, willitserver.WithLogger(logger))
	require.NoError(t, err)
	accept(node)
	assert.Equal(t, 1, logs.FilterMessage(argsMsg).Len())
}
