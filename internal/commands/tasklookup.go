package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"buildboard/internal/exitcode"
	"buildboard/internal/repository"
	"buildboard/internal/service"
	"buildboard/internal/task"
)

var (
	// ErrTaskRefRequired is returned when no task reference is given.
	ErrTaskRefRequired = errors.New("task reference required")
	// ErrTaskNotFound is returned when no task matches a reference.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAmbiguousRef is returned when a prefix matches several tasks.
	ErrAmbiguousRef = errors.New("ambiguous task reference")
)

// ResolveTask finds the task named by ref: an exact ID, or a prefix of
// exactly one ID. Both comparisons ignore case.
func ResolveTask(tasks []task.Task, ref string) (task.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return task.Task{}, ErrTaskRefRequired
	}
	var matches []task.Task
	for _, t := range tasks {
		if strings.EqualFold(t.ID, ref) {
			return t, nil
		}
		if len(t.ID) > len(ref) && strings.EqualFold(t.ID[:len(ref)], ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, t := range matches {
			ids[i] = t.ID
		}
		return task.Task{}, fmt.Errorf("%w: %s matches %s", ErrAmbiguousRef, ref, strings.Join(ids, ", "))
	}
}

// lookupTask lists the tasks and resolves args[0]. On failure it reports the
// problem and returns the exit code.
func lookupTask(ctx context.Context, repo *repository.Repository, args []string, errOut io.Writer) (task.Task, []task.Task, int) {
	if len(args) == 0 {
		fmt.Fprintf(errOut, "error: %v\n", ErrTaskRefRequired)
		return task.Task{}, nil, exitcode.UserError
	}
	tasks, err := repo.ListTasks(ctx)
	if err != nil {
		return task.Task{}, nil, storeExit(err)
	}
	t, err := ResolveTask(tasks, args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return task.Task{}, nil, exitcode.UserError
	}
	return t, tasks, exitcode.Success
}

// storeExit maps a repository error to an exit code. The repository has
// already reported the message.
func storeExit(err error) int {
	if service.IsKind(err, service.KindNotFound) {
		return exitcode.UserError
	}
	return exitcode.BackendError
}
