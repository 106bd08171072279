// Command ytbatch resolves text queries against a video platform and
// downloads each first result sequentially, recording every row in a
// resumable CSV run ledger.
package main
