package factory

import fab "github.com/Goldziher/fabricator"

func NewCategory[T any](customData ...map[string]any) T {
	return fab.New(*new(T)).Build(customData...)
}
