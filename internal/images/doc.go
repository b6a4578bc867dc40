// Package images resolves and replaces the profile picture stored for a user.
//
// Pictures live in a flat [Store] keyed by file name, where each name is
// "<slug>.<ext>" and ext is one of [AllowedExtensions]. The [Uploader] keeps at
// most one picture per slug: a new upload is written first and every other
// extension variant for the same slug is evicted afterwards, under a per-slug
// lock.
//
// The [Resolver] is read-only and never fails. It answers, in order:
//  1. the exact picture for the slug, trying extensions in preference order
//  2. the most recently modified picture in the whole store (see [ResolverOptions])
//  3. a static placeholder
//
// [DirStore] binds the store to a directory on disk. [MemoryStore] is an
// in-process implementation for tests and tooling.
package images
