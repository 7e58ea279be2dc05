package ecs

import "github.com/milk9111/platformcore/common"

// completionSlack absorbs float drift when a duration is summed from
// fixed steps (9 x 0.02 is not exactly 0.18).
const completionSlack = 1e-9

// Task is a cooperative "do X over T, then Y" action advanced by the tick
// of the queue that owns it.
type Task struct {
	duration float64
	elapsed  float64
	step     func(progress float64)
	done     func()
	active   bool
}

// Cancel stops the task without running its completion. It is safe to call
// on a nil, finished or already cancelled task.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.active = false
}

func (t *Task) Active() bool {
	return t != nil && t.active
}

// Progress is elapsed/duration clamped to [0,1].
func (t *Task) Progress() float64 {
	if t == nil {
		return 0
	}
	if t.duration <= 0 {
		return 1
	}
	return common.Clamp01(t.elapsed / t.duration)
}

// Tasks is the queue for one tick rate.
type Tasks struct {
	tasks []*Task
}

func NewTasks() *Tasks {
	return &Tasks{}
}

// Schedule registers a task. step (optional) receives the progress each
// advance; done (optional) runs once when the duration has elapsed. Tasks
// scheduled during Advance start on the next Advance.
func (q *Tasks) Schedule(duration float64, step func(progress float64), done func()) *Task {
	t := &Task{duration: duration, step: step, done: done, active: true}
	if q == nil {
		t.active = false
		return t
	}
	q.tasks = append(q.tasks, t)
	return t
}

// After is Schedule without a step callback.
func (q *Tasks) After(duration float64, done func()) *Task {
	return q.Schedule(duration, nil, done)
}

func (q *Tasks) Advance(dt float64) {
	if q == nil || len(q.tasks) == 0 {
		return
	}
	n := len(q.tasks)
	for i := 0; i < n && i < len(q.tasks); i++ {
		t := q.tasks[i]
		if !t.active {
			continue
		}
		t.elapsed += dt
		finished := t.elapsed >= t.duration-completionSlack
		if t.step != nil {
			if finished {
				t.step(1)
			} else {
				t.step(t.Progress())
			}
		}
		// step may cancel its own task
		if !t.active || !finished {
			continue
		}
		t.active = false
		if t.done != nil {
			t.done()
		}
	}

	kept := q.tasks[:0]
	for _, t := range q.tasks {
		if t.active {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(q.tasks); i++ {
		q.tasks[i] = nil
	}
	q.tasks = kept
}

// Len counts pending tasks.
func (q *Tasks) Len() int {
	if q == nil {
		return 0
	}
	count := 0
	for _, t := range q.tasks {
		if t.active {
			count++
		}
	}
	return count
}

// Clear cancels every pending task.
func (q *Tasks) Clear() {
	if q == nil {
		return
	}
	for _, t := range q.tasks {
		t.Cancel()
	}
	q.tasks = nil
}
