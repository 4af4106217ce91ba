// Package abi provides the word-level arithmetic shared by the layout engine
// and the buffer encoder.
//
// # Contents
//
//   - helpers.go: alignment, padding and overflow-checked uint32 arithmetic
//   - coerce.go: conversion of loosely typed Go values (JSON numbers etc.) to
//     the 32-bit words stored in packed buffers
//
// This package is internal to gpu-layout.
package abi
