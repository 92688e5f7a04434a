package main

import (
	"sync"
	"time"
)

type Todo struct {
	Id        int64
	Text      string
	Completed bool
	CreatedAt time.Time
}

// Store keeps todos in memory.
type Store struct {
	mu     sync.RWMutex
	todos  []Todo
	nextId int64
}

func NewStore() *Store {
	return &Store{nextId: 1}
}

func (s *Store) List() []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Todo, len(s.todos))
	copy(res, s.todos)
	return res
}

func (s *Store) Add(text string) Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	todo := Todo{
		Id:        s.nextId,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.nextId++
	s.todos = append(s.todos, todo)
	return todo
}
