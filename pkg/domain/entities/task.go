package entities

// Task is a unit of asynchronous work scheduled on the task manager.
type Task func()
