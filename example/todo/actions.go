package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"

	"willitserver"
)

var errEmptyTodo = errors.New("todo: text must not be empty")

// TodoActions are the server functions a client may call.
type TodoActions struct {
	GetTodos    func(ctx context.Context) ([]Todo, error)
	CreateTodo  func(ctx context.Context, text string) (Todo, error)
	RenderTodos func(ctx context.Context) (willitserver.Node, error)
}

func NewTodoActions(store *Store, opts ...willitserver.FuncOption) (*TodoActions, error) {
	actions := &TodoActions{
		GetTodos: func(ctx context.Context) ([]Todo, error) {
			return store.List(), nil
		},
		CreateTodo: func(ctx context.Context, text string) (Todo, error) {
			if text == "" {
				return Todo{}, errEmptyTodo
			}
			return store.Add(text), nil
		},
		RenderTodos: func(ctx context.Context) (willitserver.Node, error) {
			return todoList{todos: store.List()}, nil
		},
	}
	if err := willitserver.Guard(actions, opts...); err != nil {
		return nil, err
	}
	return actions, nil
}

// todoList renders todos as an html list.
type todoList struct {
	todos []Todo
}

func (l todoList) Render(_ context.Context, w io.Writer) error {
	if _, err := io.WriteString(w, "<ul>"); err != nil {
		return err
	}
	for _, todo := range l.todos {
		if _, err := fmt.Fprintf(w, "<li id=\"todo-%d\">%s</li>", todo.Id, html.EscapeString(todo.Text)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</ul>")
	return err
}
