// Copyright 2025 go-ellpack Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package spmv multiplies an ELL sparse matrix by a dense block of
// right-hand-side vectors.
//
// # Entry points
//
//   - SpMV(a, b, c) computes C = A*B.
//   - AdvancedSpMV(alpha, a, b, beta, c) computes C = alpha*A*B + beta*C,
//     where alpha and beta are 1×1 dense blocks.
//   - The WithPool variants reuse a persistent workerpool.Pool across calls.
//
// Both forms are stateless, idempotent transformations: nothing but the
// output block is mutated, and a call with a zero-column input block returns
// immediately without touching the output.
//
// # Strategy selection
//
// The right-hand-side count R = b.Cols() picks the kernel:
//
//   - R in 1..4: row-group strategy, accumulating 4 rows × R partial sums
//     per stored slot.
//   - R == 1 with float64 coefficients and int32 indices: masked-gather fast
//     path over lane-width row batches. Purely a performance specialization;
//     results match the row-group strategy.
//   - R > 4: blocked strategy, walking each row's right-hand sides in chunks
//     of 4 columns.
//
// Every strategy checks the invalid-index sentinel on every slot read:
// sentinel slots contribute exactly zero, wherever they appear in a row.
//
// # Mixed precision
//
// Accumulation runs in the working precision promoted from the input,
// matrix, and output element types (Promote), so float32 operands feeding a
// float64 output are accumulated in float64.
//
// # Parallelism
//
// Rows are partitioned into disjoint contiguous strips that cover the matrix
// exactly once, each written by a single worker, with an implicit join
// before the call returns. The matrix and input block are read-only during
// the call. Shape violations panic immediately rather than producing wrong
// results.
package spmv
