// Package fuzztests houses Go fuzz harnesses for the program decoder and the
// ownership checker. Its goal is to guard against panics on arbitrary
// documents and to check the checker's structural invariants on arbitrary
// instruction sequences.
//
// Назначение: прогонять произвольные байты через program.Decode и
// произвольные последовательности инструкций через ownership.Checker.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/program, internal/ownership, internal/testkit,
// internal/diag.
package fuzztests
