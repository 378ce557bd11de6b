package services

import "munitask/internal/models"

// Transiciones de estado permitidas para una tarea.
// NB: resolved→pending solo lo ejecuta Reopen; el update genérico
// rechaza cualquier cambio que entre o salga de resolved.
var taskTransitions = map[models.TaskStatus]map[models.TaskStatus]bool{
	models.StatusPending:    {models.StatusInProgress: true, models.StatusResolved: true},
	models.StatusInProgress: {models.StatusResolved: true},
	models.StatusResolved:   {models.StatusPending: true},
}

func canTransition(from, to models.TaskStatus) bool {
	if from == to {
		return true
	}
	nexts, ok := taskTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}

func isKnownStatus(s models.TaskStatus) bool {
	switch s {
	case models.StatusPending, models.StatusInProgress, models.StatusResolved:
		return true
	}
	// "completed" sigue en el esquema pero ninguna transición llega a él
	return false
}
