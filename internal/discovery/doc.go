// Package discovery locates candidate audit file pairs on disk and
// classifies each as Live or Archive. Discovery only stats and lists the
// filesystem, never parses, which makes it cheap enough to run on every
// UI refresh. The source list is an immutable snapshot swapped atomically
// on each re-scan so readers always observe a consistent list.
package discovery
