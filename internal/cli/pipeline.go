package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	graphragData   string
	graphragTopK   int
	graphragGPUs   int
	graphragDryRun bool

	papersWOSDir string
	papersOutDir string
	papersTime   string
	papersDryRun bool
)

var graphragCmd = &cobra.Command{
	Use:   "graphrag",
	Short: "Submit the knowledge-graph pipeline job",
	Long: "Submits `python -m rsstvlm.services.graphrag.pipeline` as a batch job. The " +
		"pipeline itself builds the property graph against Neo4j and the running " +
		"embedding server; this command only schedules it.",
	Args: cobra.NoArgs,
	RunE: runGraphrag,
}

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Submit the paper-download job",
	Long: "Submits `python -m rsstvlm.rag.paper_download` as a CPU batch job. The " +
		"downloader resumes from PDFs already on disk, so resubmitting after a timeout " +
		"is safe.",
	Args: cobra.NoArgs,
	RunE: runPapers,
}

func init() {
	graphragCmd.Flags().StringVar(&graphragData, "data", "", "Path to the parsed paper JSON documents")
	graphragCmd.Flags().IntVar(&graphragTopK, "top-k", 0, "similarity_top_k for the retriever (0 = pipeline default)")
	graphragCmd.Flags().IntVar(&graphragGPUs, "gpus", 0, "GPUs for the pipeline job (default CPU-only)")
	graphragCmd.Flags().BoolVar(&graphragDryRun, "dry-run", false, "Print the batch script without submitting")

	papersCmd.Flags().StringVar(&papersWOSDir, "wos-dir", "", "Directory of Web of Science exports")
	papersCmd.Flags().StringVar(&papersOutDir, "out-dir", "", "Directory for downloaded PDFs")
	papersCmd.Flags().StringVar(&papersTime, "time", "24:00:00", "Time limit for the download job")
	papersCmd.Flags().BoolVar(&papersDryRun, "dry-run", false, "Print the batch script without submitting")
}

func runGraphrag(cmd *cobra.Command, args []string) error {
	id := runID()
	job := baseJob("graphrag", id)
	job.GPUs = graphragGPUs
	job.Command = []string{cfg.Binaries.Python, "-m", "rsstvlm.services.graphrag.pipeline"}
	if graphragData != "" {
		job.Command = append(job.Command, "--data", graphragData)
	}
	if graphragTopK > 0 {
		job.Command = append(job.Command, "--top-k", fmt.Sprintf("%d", graphragTopK))
	}

	if graphragDryRun {
		return printScript(job)
	}
	ctx, cancel := signalContext()
	defer cancel()
	jobID, err := newSlurmClient().Submit(ctx, job)
	if err != nil {
		return err
	}
	logger.Info("graphrag job submitted", zap.Int("job_id", jobID))
	fmt.Printf("Submitted batch job %d (%s)\n", jobID, job.Name)
	return nil
}

func runPapers(cmd *cobra.Command, args []string) error {
	id := runID()
	job := baseJob("papers", id)
	job.GPUs = 0
	job.TimeLimit = papersTime
	job.Mem = "32G" // the downloader is I/O bound
	job.Command = []string{cfg.Binaries.Python, "-m", "rsstvlm.rag.paper_download"}
	if papersWOSDir != "" {
		job.Command = append(job.Command, "--wos-dir", papersWOSDir)
	}
	if papersOutDir != "" {
		job.Command = append(job.Command, "--out-dir", papersOutDir)
	}

	if papersDryRun {
		return printScript(job)
	}
	ctx, cancel := signalContext()
	defer cancel()
	jobID, err := newSlurmClient().Submit(ctx, job)
	if err != nil {
		return err
	}
	logger.Info("paper-download job submitted", zap.Int("job_id", jobID))
	fmt.Printf("Submitted batch job %d (%s)\n", jobID, job.Name)
	return nil
}
