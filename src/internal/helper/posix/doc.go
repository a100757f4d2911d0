// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix holds small process helpers that behave the same on [POSIX]
// systems and Windows, used to label command usage strings.
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
